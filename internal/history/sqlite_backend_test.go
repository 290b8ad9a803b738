package history

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSQLiteBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	persister, closer, err := OpenBackend(BackendSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := NewStore(persister, 10)
	if err := store.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	store.Record("id", "dev", "1")
	store.Record("id", "dev", "2")
	store.Record("id", "dev", "1")
	if err := store.Persist(); err != nil {
		t.Fatalf("persist: %v", err)
	}
	store.Record("id", "dev", "3")
	if err := store.Persist(); err != nil {
		t.Fatalf("second persist: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	again := NewStore(reopened, 10)
	if err := again.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"3", "1", "2"}, again.Lookup("id", "dev")); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}
}

func TestOpenBackendRejectsUnknownKind(t *testing.T) {
	if _, _, err := OpenBackend("redis", "x"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
