package history

import (
	"fmt"
	"io"
	"strings"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// OpenBackend returns the persister named by kind. The returned closer
// releases any resources the backend holds.
func OpenBackend(kind, path string) (Persister, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendFile:
		return NewFileBackend(path), nopCloser{}, nil
	case BackendSQLite:
		b, err := OpenSQLiteBackend(path)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		return nil, nil, fmt.Errorf("history: unknown backend %q", kind)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
