package history

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/unkn0wn-root/rhc/internal/util"
)

type fileDocument struct {
	Entries []Record `toml:"entries"`
}

// FileBackend stores the history snapshot as a TOML document.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load() ([]Record, error) {
	if b.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &LoadError{Source: b.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc fileDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Source: b.path, Err: errors.Join(ErrMalformedStore, err)}
	}
	return doc.Entries, nil
}

func (b *FileBackend) Persist(records []Record) error {
	if b.path == "" {
		return nil
	}
	data, err := toml.Marshal(fileDocument{Entries: records})
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	lock, err := acquireFileLock(b.path + ".lock")
	if err != nil {
		return err
	}
	defer func() {
		_ = releaseFileLock(lock)
	}()

	if err := util.WriteFileAtomic(b.path, data, 0o600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
