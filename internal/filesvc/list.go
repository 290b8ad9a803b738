package filesvc

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	extTOML = ".toml"
	extYAML = ".yaml"
	extYML  = ".yml"
	extEnv  = ".env"
)

type FileEntry struct {
	Name string
	Path string
}

func IsDefinitionFile(path string) bool {
	return fileExt(path) == extTOML
}

// IsEnvironmentFile accepts toml, yaml and dotenv files, including the
// ".env" and ".env.<name>" spellings.
func IsEnvironmentFile(path string) bool {
	base := filepath.Base(path)
	if base == extEnv || strings.HasPrefix(base, extEnv+".") {
		return true
	}
	switch fileExt(path) {
	case extTOML, extYAML, extYML, extEnv:
		return true
	default:
		return false
	}
}

// ListDefinitionFiles walks root recursively. Entry names are slash separated
// paths relative to root with the extension stripped.
func ListDefinitionFiles(root string) ([]FileEntry, error) {
	return listFiles(root, true, IsDefinitionFile, func(rel string) string {
		return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	})
}

// ListEnvironmentFiles lists the environment files directly inside root.
func ListEnvironmentFiles(root string) ([]FileEntry, error) {
	return listFiles(root, false, IsEnvironmentFile, func(rel string) string {
		return rel
	})
}

func listFiles(root string, recursive bool, include func(string) bool, name func(string) string) ([]FileEntry, error) {
	var entries []FileEntry
	appendEntry := func(rel, path string) {
		entries = append(entries, FileEntry{Name: name(rel), Path: path})
	}

	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !include(d.Name()) {
				return nil
			}
			rel := d.Name()
			if r, relErr := filepath.Rel(root, path); relErr == nil {
				rel = r
			}
			appendEntry(rel, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range dirEntries {
			if entry.IsDir() || !include(entry.Name()) {
				continue
			}
			appendEntry(entry.Name(), filepath.Join(root, entry.Name()))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
