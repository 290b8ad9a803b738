package filesvc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestListDefinitionFilesRecursesAndSkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "users", "list.toml"), "")
	writeFile(t, filepath.Join(root, "ping.toml"), "")
	writeFile(t, filepath.Join(root, ".git", "config.toml"), "")
	writeFile(t, filepath.Join(root, "notes.md"), "")

	entries, err := ListDefinitionFiles(root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"ping", "users/list"}, names); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestListEnvironmentFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"dev.toml", "prod.yaml", "stage.yml", ".env", ".env.local", "ci.env", "readme.txt"} {
		writeFile(t, filepath.Join(root, name), "")
	}
	writeFile(t, filepath.Join(root, "nested", "x.toml"), "")

	entries, err := ListEnvironmentFiles(root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := []string{".env", ".env.local", "ci.env", "dev.toml", "prod.yaml", "stage.yml"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected names (-want +got):\n%s", diff)
	}
}

func TestLoadDefinitionsKeepsBrokenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.toml"), "[request]\nmethod = \"GET\"\nurl = \"http://x\"\n")
	writeFile(t, filepath.Join(root, "bad.toml"), "[request\n")

	loaded, err := LoadDefinitions(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected both files, got %d", len(loaded))
	}
	if loaded[0].Name != "bad" || loaded[0].Err == nil || loaded[0].Def != nil {
		t.Fatalf("expected bad.toml to carry its parse error, got %+v", loaded[0])
	}
	if loaded[1].Name != "good" || loaded[1].Err != nil || loaded[1].Def == nil {
		t.Fatalf("expected good.toml to parse, got %+v", loaded[1])
	}
}

func TestLoadDefinitionsMissingRoot(t *testing.T) {
	loaded, err := LoadDefinitions(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing root must not fail: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no definitions, got %d", len(loaded))
	}
}
