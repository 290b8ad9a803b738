package restfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type rawDefinition struct {
	Metadata *struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
	} `toml:"metadata"`
	Request *struct {
		Method string `toml:"method"`
		URL    string `toml:"url"`
	} `toml:"request"`
	Query *struct {
		Params []KeyValue `toml:"params"`
	} `toml:"query"`
	Headers *struct {
		Headers []KeyValue `toml:"headers"`
	} `toml:"headers"`
	Body *struct {
		Type    string `toml:"type"`
		Content any    `toml:"content"`
	} `toml:"body"`
}

// LoadFile reads and parses the definition stored at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def.Path = path
	return def, nil
}

func Parse(data []byte) (*Definition, error) {
	var raw rawDefinition
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, fmt.Errorf("parse definition: %s", strings.TrimSpace(sme.String()))
		}
		return nil, fmt.Errorf("parse definition: %w", err)
	}
	if raw.Request == nil {
		return nil, errors.New("parse definition: missing [request] table")
	}
	if strings.TrimSpace(raw.Request.URL) == "" {
		return nil, errors.New("parse definition: request.url is required")
	}
	method, err := ParseMethod(raw.Request.Method)
	if err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	def := &Definition{Request: Request{Method: method, URL: raw.Request.URL}}
	if raw.Metadata != nil {
		def.Metadata = Metadata{Name: raw.Metadata.Name, Description: raw.Metadata.Description}
	}
	if raw.Query != nil {
		def.Query = raw.Query.Params
	}
	if raw.Headers != nil {
		def.Headers = raw.Headers.Headers
	}
	if raw.Body != nil {
		body, err := parseBody(raw.Body.Type, raw.Body.Content)
		if err != nil {
			return nil, fmt.Errorf("parse definition: %w", err)
		}
		def.Body = body
	}
	return def, nil
}

func parseBody(kind string, content any) (*Body, error) {
	switch BodyType(strings.ToLower(strings.TrimSpace(kind))) {
	case BodyJSON:
		s, ok := content.(string)
		if !ok {
			return nil, errors.New("body.content must be a string for json bodies")
		}
		return &Body{Type: BodyJSON, Content: s}, nil
	case BodyText:
		s, ok := content.(string)
		if !ok {
			return nil, errors.New("body.content must be a string for text bodies")
		}
		return &Body{Type: BodyText, Content: s}, nil
	case BodyURLEncoded:
		form, err := formPairs(content)
		if err != nil {
			return nil, err
		}
		return &Body{Type: BodyURLEncoded, Form: form}, nil
	default:
		return nil, fmt.Errorf("unsupported body type %q", kind)
	}
}

func formPairs(content any) ([]KeyValue, error) {
	items, ok := content.([]any)
	if !ok {
		return nil, errors.New("body.content must be a list of {name, value} for urlencoded bodies")
	}
	out := make([]KeyValue, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("body.content[%d] must be a table", i)
		}
		name, nok := m["name"].(string)
		value, vok := m["value"].(string)
		if !nok || !vok {
			return nil, fmt.Errorf("body.content[%d] needs string name and value", i)
		}
		out = append(out, KeyValue{Name: name, Value: value})
	}
	return out, nil
}
