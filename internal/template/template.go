// Package template finds and substitutes {name} placeholders in request
// definitions.
//
// Substitution is textual. Values are inserted as-is, so a value containing a
// quote placed inside a JSON body can produce invalid JSON; the executor
// validates JSON bodies after rendering.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/unkn0wn-root/rhc/internal/restfile"
	"github.com/unkn0wn-root/rhc/internal/util"
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

var ErrUnresolvedVariable = errors.New("unresolved variable")

type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnresolvedVariable, strings.Join(e.Names, ", "))
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolvedVariable
}

// Scan returns the placeholder names in s in order of appearance, repeats
// included. An unterminated "{" is not a placeholder.
func Scan(s string) []string {
	matches := placeholderRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Fields returns every templated field of def in a fixed order: URL, query
// names and values, header names and values, then the body.
func Fields(def *restfile.Definition) []string {
	if def == nil {
		return nil
	}
	fields := []string{def.Request.URL}
	for _, kv := range def.Query {
		fields = append(fields, kv.Name, kv.Value)
	}
	for _, kv := range def.Headers {
		fields = append(fields, kv.Name, kv.Value)
	}
	if def.Body != nil {
		fields = append(fields, def.Body.Content)
		for _, kv := range def.Body.Form {
			fields = append(fields, kv.Name, kv.Value)
		}
	}
	return fields
}

// ExtractVariables returns the distinct placeholder names of def in order of
// first appearance.
func ExtractVariables(def *restfile.Definition) []string {
	var names []string
	for _, field := range Fields(def) {
		names = append(names, Scan(field)...)
	}
	if len(names) == 0 {
		return nil
	}
	return util.DedupeNonEmptyStrings(names)
}

// Substitute replaces every {name} in s whose name is bound. Unbound
// placeholders stay literal. Inserted values are not rescanned.
func Substitute(s string, bindings map[string]string) string {
	if len(bindings) == 0 || !strings.Contains(s, "{") {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := bindings[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// Render returns a copy of def with every placeholder substituted. It fails
// with an *UnresolvedError when a placeholder has no binding, and def is left
// untouched.
func Render(def *restfile.Definition, bindings map[string]string) (*restfile.Definition, error) {
	if def == nil {
		return nil, errors.New("render: nil definition")
	}
	var missing []string
	for _, name := range ExtractVariables(def) {
		if _, ok := bindings[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &UnresolvedError{Names: missing}
	}
	return Apply(def, bindings), nil
}

// Apply substitutes the bound placeholders of def without checking that all
// of them are bound.
func Apply(def *restfile.Definition, bindings map[string]string) *restfile.Definition {
	out := def.Clone()
	if out == nil {
		return nil
	}
	out.Request.URL = Substitute(out.Request.URL, bindings)
	substituteKeyValues(out.Query, bindings)
	substituteKeyValues(out.Headers, bindings)
	if out.Body != nil {
		out.Body.Content = Substitute(out.Body.Content, bindings)
		substituteKeyValues(out.Body.Form, bindings)
	}
	return out
}

func substituteKeyValues(kvs []restfile.KeyValue, bindings map[string]string) {
	for i := range kvs {
		kvs[i].Name = Substitute(kvs[i].Name, bindings)
		kvs[i].Value = Substitute(kvs[i].Value, bindings)
	}
}
