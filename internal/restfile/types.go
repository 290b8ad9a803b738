package restfile

import (
	"fmt"
	"net/http"
	"strings"
)

type KeyValue struct {
	Name  string `toml:"name" yaml:"name"`
	Value string `toml:"value" yaml:"value"`
}

type Metadata struct {
	Name        string
	Description string
}

type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodPatch   Method = http.MethodPatch
	MethodTrace   Method = http.MethodTrace
)

var methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodDelete,
	MethodHead,
	MethodOptions,
	MethodPatch,
	MethodTrace,
}

// ParseMethod accepts any casing of a supported HTTP method.
func ParseMethod(s string) (Method, error) {
	up := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range methods {
		if m == up {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

type Request struct {
	Method Method
	URL    string
}

type BodyType string

const (
	BodyJSON       BodyType = "json"
	BodyText       BodyType = "text"
	BodyURLEncoded BodyType = "urlencoded"
)

// Body holds either Content (json, text) or Form (urlencoded).
type Body struct {
	Type    BodyType
	Content string
	Form    []KeyValue
}

// Definition is one stored request with its templated fields.
type Definition struct {
	Path     string
	Metadata Metadata
	Request  Request
	Query    []KeyValue
	Headers  []KeyValue
	Body     *Body
}

func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.Query = cloneKeyValues(d.Query)
	out.Headers = cloneKeyValues(d.Headers)
	if d.Body != nil {
		body := *d.Body
		body.Form = cloneKeyValues(d.Body.Form)
		out.Body = &body
	}
	return &out
}

// Title prefers the metadata name and falls back to the file name.
func (d *Definition) Title() string {
	if d == nil {
		return ""
	}
	if name := strings.TrimSpace(d.Metadata.Name); name != "" {
		return name
	}
	return d.Path
}

func cloneKeyValues(in []KeyValue) []KeyValue {
	if in == nil {
		return nil
	}
	out := make([]KeyValue, len(in))
	copy(out, in)
	return out
}
