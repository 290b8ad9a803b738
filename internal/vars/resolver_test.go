package vars

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLayeredPrecedence(t *testing.T) {
	r := Layered(
		map[string]string{"a": "cli"},
		map[string]string{"a": "env", "b": "env"},
		map[string]string{"a": "prompt", "b": "prompt", "c": "prompt"},
	)

	cases := []struct {
		name   string
		value  string
		source Source
	}{
		{"a", "cli", SourceCLI},
		{"b", "env", SourceEnvironment},
		{"c", "prompt", SourcePrompt},
	}
	for _, tc := range cases {
		res := r.Lookup(tc.name)
		if !res.Found || res.Value != tc.value || res.Source != tc.source {
			t.Fatalf("Lookup(%q) = %+v, want %q from %v", tc.name, res, tc.value, tc.source)
		}
	}
	if res := r.Lookup("d"); res.Found || res.Source != SourceNone {
		t.Fatalf("expected d to be unresolved, got %+v", res)
	}
}

func TestCLIBindingSurvivesEnvironmentChanges(t *testing.T) {
	cli := map[string]string{"token": "from-cli"}
	envs := []map[string]string{
		nil,
		{"token": "dev"},
		{"token": "prod"},
		{},
	}
	for _, env := range envs {
		value, ok := Layered(cli, env, nil).Resolve("token")
		if !ok || value != "from-cli" {
			t.Fatalf("env %v: expected cli value, got %q (ok=%v)", env, value, ok)
		}
	}
}

func TestResolveAllKeepsUnresolvedOrder(t *testing.T) {
	r := Layered(map[string]string{"b": "1"}, nil, nil)
	resolved, unresolved := r.ResolveAll([]string{"c", "b", "a", "c"})
	if diff := cmp.Diff(map[string]string{"b": "1"}, resolved); diff != "" {
		t.Fatalf("resolved (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "a"}, unresolved); diff != "" {
		t.Fatalf("unresolved (-want +got):\n%s", diff)
	}
}

func TestEmptyValueCountsAsBound(t *testing.T) {
	r := Layered(nil, nil, map[string]string{"x": ""})
	value, ok := r.Resolve("x")
	if !ok || value != "" {
		t.Fatalf("expected empty prompt value to resolve, got %q ok=%v", value, ok)
	}
}

func TestNamesAreCaseSensitive(t *testing.T) {
	r := Layered(map[string]string{"Token": "1"}, nil, nil)
	if _, ok := r.Resolve("token"); ok {
		t.Fatalf("lookups must be case-sensitive")
	}
}

func TestMapProviderCopiesInput(t *testing.T) {
	values := map[string]string{"a": "1"}
	p := NewMapProvider("x", values)
	values["a"] = "2"
	if v, _ := p.Resolve("a"); v != "1" {
		t.Fatalf("provider must not observe later map writes, got %q", v)
	}
}
