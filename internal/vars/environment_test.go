package vars

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unkn0wn-root/rhc/internal/restfile"
)

func writeEnv(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadEnvironmentFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "dev.toml", `
name = "dev"
variables = [
  { name = "host", value = "localhost:8080" },
  { name = "token", value = "abc" },
]
`)
	env, err := LoadEnvironmentFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if env.Name != "dev" || env.Path != path {
		t.Fatalf("unexpected environment %+v", env)
	}
	want := map[string]string{"host": "localhost:8080", "token": "abc"}
	if diff := cmp.Diff(want, env.Map()); diff != "" {
		t.Fatalf("variables (-want +got):\n%s", diff)
	}
}

func TestLoadEnvironmentFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "staging.yaml", `
variables:
  - name: host
    value: staging.example
`)
	env, err := LoadEnvironmentFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if env.Name != "staging" {
		t.Fatalf("name must fall back to file stem, got %q", env.Name)
	}
	if diff := cmp.Diff([]restfile.KeyValue{{Name: "host", Value: "staging.example"}}, env.Variables); diff != "" {
		t.Fatalf("variables (-want +got):\n%s", diff)
	}
}

func TestLoadEnvironmentFileDotEnv(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		".env":       "default",
		".env.local": "local",
		"ci.env":     "ci",
	}
	for file, wantName := range cases {
		path := writeEnv(t, dir, file, "B=2\nA=\"quoted value\"\n")
		env, err := LoadEnvironmentFile(path)
		if err != nil {
			t.Fatalf("%s: load: %v", file, err)
		}
		if env.Name != wantName {
			t.Fatalf("%s: expected name %q, got %q", file, wantName, env.Name)
		}
		want := []restfile.KeyValue{{Name: "A", Value: "quoted value"}, {Name: "B", Value: "2"}}
		if diff := cmp.Diff(want, env.Variables); diff != "" {
			t.Fatalf("%s: variables (-want +got):\n%s", file, diff)
		}
	}
}

func TestLoadEnvironmentFileRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeEnv(t, dir, "dup.toml", `
name = "dup"
variables = [
  { name = "a", value = "1" },
  { name = "a", value = "2" },
]
`)
	_, err := LoadEnvironmentFile(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate variables: a") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLoadEnvironmentsSortsAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeEnv(t, dir, "b.toml", "name = \"zeta\"\n")
	writeEnv(t, dir, "a.toml", "name = \"alpha\"\n")
	writeEnv(t, dir, "broken.toml", "name = [\n")

	envs, err := LoadEnvironments(dir)
	if err == nil || !strings.Contains(err.Error(), "broken.toml") {
		t.Fatalf("expected error naming broken.toml, got %v", err)
	}
	var names []string
	for _, env := range envs {
		names = append(names, env.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "zeta"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestLoadEnvironmentsMissingDir(t *testing.T) {
	envs, err := LoadEnvironments(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(envs) != 0 {
		t.Fatalf("expected no environments and no error, got %v, %v", envs, err)
	}
}

func TestFindAndSuggestEnvironment(t *testing.T) {
	envs := []*Environment{
		{Name: "dev", Path: "/envs/dev.toml"},
		{Name: "production", Path: "/envs/prod.toml"},
	}
	if idx, ok := FindEnvironment(envs, "production"); !ok || idx != 1 {
		t.Fatalf("expected production at 1, got %d %v", idx, ok)
	}
	if idx, ok := FindEnvironment(envs, "/envs/dev.toml"); !ok || idx != 0 {
		t.Fatalf("expected dev by path, got %d %v", idx, ok)
	}
	if _, ok := FindEnvironment(envs, "prd"); ok {
		t.Fatalf("did not expect a match for prd")
	}
	if got := SuggestEnvironment(envs, "prd"); got != "production" {
		t.Fatalf("expected suggestion production, got %q", got)
	}
	if got := SuggestEnvironment(nil, "prd"); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
}

func TestNilEnvironmentMap(t *testing.T) {
	var env *Environment
	if env.Map() != nil {
		t.Fatalf("nil environment must have no variables")
	}
}
