package filesvc

import (
	"errors"
	"io/fs"

	"github.com/unkn0wn-root/rhc/internal/restfile"
)

// LoadedDefinition is a listed definition file. Def is nil when the file
// could not be parsed, in which case Err says why.
type LoadedDefinition struct {
	Name string
	Path string
	Def  *restfile.Definition
	Err  error
}

// LoadDefinitions lists and parses every definition under root. Parse
// failures are kept in the result. A missing root yields no definitions.
func LoadDefinitions(root string) ([]LoadedDefinition, error) {
	files, err := ListDefinitionFiles(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]LoadedDefinition, 0, len(files))
	for _, f := range files {
		def, perr := restfile.LoadFile(f.Path)
		out = append(out, LoadedDefinition{Name: f.Name, Path: f.Path, Def: def, Err: perr})
	}
	return out, nil
}
