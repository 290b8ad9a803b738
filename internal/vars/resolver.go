package vars

import (
	"strings"

	"github.com/unkn0wn-root/rhc/internal/util"
)

// Source names the tier a binding came from. Lower values win.
type Source int

const (
	SourceNone Source = iota
	SourceCLI
	SourceEnvironment
	SourcePrompt
)

func (s Source) String() string {
	switch s {
	case SourceCLI:
		return LabelCLI
	case SourceEnvironment:
		return LabelEnvironment
	case SourcePrompt:
		return LabelPrompt
	default:
		return "unresolved"
	}
}

const (
	LabelCLI         = "cli"
	LabelEnvironment = "environment"
	LabelPrompt      = "prompt"
)

type Provider interface {
	Resolve(name string) (string, bool)
	Label() string
}

// Resolver asks its providers in order; the first provider holding a name
// wins. It keeps no state of its own.
type Resolver struct {
	providers []Provider
}

func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// Layered builds the session precedence chain: command line bindings, then
// the active environment, then values entered at the prompt.
func Layered(cli, environment, prompted map[string]string) *Resolver {
	return NewResolver(
		NewMapProvider(LabelCLI, cli),
		NewMapProvider(LabelEnvironment, environment),
		NewMapProvider(LabelPrompt, prompted),
	)
}

func (r *Resolver) Resolve(name string) (string, bool) {
	res := r.Lookup(name)
	return res.Value, res.Found
}

type Resolution struct {
	Name   string
	Value  string
	Source Source
	Label  string
	Found  bool
}

// Lookup reports the winning value for name and where it came from.
func (r *Resolver) Lookup(name string) Resolution {
	res := Resolution{Name: name}
	if r == nil || name == "" {
		return res
	}
	for _, provider := range r.providers {
		if provider == nil {
			continue
		}
		if value, ok := provider.Resolve(name); ok {
			res.Value = value
			res.Found = true
			res.Label = provider.Label()
			res.Source = sourceForLabel(res.Label)
			return res
		}
	}
	return res
}

// ResolveAll splits names into the bound values and the names still missing.
// Unresolved names keep the order of names.
func (r *Resolver) ResolveAll(names []string) (map[string]string, []string) {
	resolved := make(map[string]string, len(names))
	var unresolved []string
	for _, name := range names {
		if _, done := resolved[name]; done {
			continue
		}
		if value, ok := r.Resolve(name); ok {
			resolved[name] = value
			continue
		}
		if !util.ContainsString(unresolved, name) {
			unresolved = append(unresolved, name)
		}
	}
	return resolved, unresolved
}

func sourceForLabel(label string) Source {
	switch strings.ToLower(label) {
	case LabelCLI:
		return SourceCLI
	case LabelEnvironment:
		return SourceEnvironment
	case LabelPrompt:
		return SourcePrompt
	default:
		return SourceNone
	}
}

// MapProvider serves a fixed map. Names are case-sensitive.
type MapProvider struct {
	values map[string]string
	label  string
}

func NewMapProvider(label string, values map[string]string) Provider {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapProvider{values: copied, label: label}
}

func (p *MapProvider) Resolve(name string) (string, bool) {
	value, ok := p.values[name]
	return value, ok
}

func (p *MapProvider) Label() string {
	return p.label
}
