package vars

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/rhc/internal/filesvc"
	"github.com/unkn0wn-root/rhc/internal/restfile"
)

const dotEnvDefaultName = "default"

// Environment is a named set of variables selectable as a unit.
type Environment struct {
	Name      string
	Path      string
	Variables []restfile.KeyValue
}

type environmentDocument struct {
	Name      string              `toml:"name" yaml:"name"`
	Variables []restfile.KeyValue `toml:"variables" yaml:"variables"`
}

// Map returns the variables keyed by name. A nil environment has none.
func (e *Environment) Map() map[string]string {
	if e == nil {
		return nil
	}
	out := make(map[string]string, len(e.Variables))
	for _, kv := range e.Variables {
		out[kv.Name] = kv.Value
	}
	return out
}

// LoadEnvironmentFile reads a toml, yaml or dotenv environment file.
func LoadEnvironmentFile(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var env *Environment
	switch {
	case IsDotEnvPath(path):
		env, err = parseDotEnv(data, path)
	case strings.EqualFold(filepath.Ext(path), ".yaml"), strings.EqualFold(filepath.Ext(path), ".yml"):
		var doc environmentDocument
		if err = yaml.Unmarshal(data, &doc); err == nil {
			env = documentEnvironment(doc, path)
		}
	default:
		var doc environmentDocument
		if err = toml.Unmarshal(data, &doc); err == nil {
			env = documentEnvironment(doc, path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("parse environment %s: %w", path, err)
	}
	if err := checkDuplicates(env.Variables); err != nil {
		return nil, fmt.Errorf("environment %s: %w", path, err)
	}
	return env, nil
}

func documentEnvironment(doc environmentDocument, path string) *Environment {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &Environment{Name: name, Path: path, Variables: doc.Variables}
}

func checkDuplicates(vars []restfile.KeyValue) error {
	seen := make(map[string]struct{}, len(vars))
	var dups []string
	for _, kv := range vars {
		if _, ok := seen[kv.Name]; ok {
			dups = append(dups, kv.Name)
			continue
		}
		seen[kv.Name] = struct{}{}
	}
	if len(dups) > 0 {
		return fmt.Errorf("duplicate variables: %s", strings.Join(dups, ", "))
	}
	return nil
}

// IsDotEnvPath matches ".env", ".env.<name>" and "<name>.env".
func IsDotEnvPath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return base == ".env" || strings.HasPrefix(base, ".env.") || strings.HasSuffix(base, ".env")
}

func parseDotEnv(data []byte, path string) (*Environment, error) {
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := &Environment{Name: dotEnvName(path), Path: path}
	for _, k := range keys {
		env.Variables = append(env.Variables, restfile.KeyValue{Name: k, Value: values[k]})
	}
	return env, nil
}

func dotEnvName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	switch {
	case lower == ".env":
		return dotEnvDefaultName
	case strings.HasPrefix(lower, ".env.") && len(base) > len(".env."):
		return strings.TrimSpace(base[len(".env."):])
	case strings.HasSuffix(lower, ".env") && len(base) > len(".env"):
		return strings.TrimSpace(base[:len(base)-len(".env")])
	}
	return dotEnvDefaultName
}

// LoadEnvironments parses every environment file in dir. Files that fail to
// parse are skipped and reported through the joined error. The result is
// sorted by name; a missing directory yields no environments.
func LoadEnvironments(dir string) ([]*Environment, error) {
	files, err := filesvc.ListEnvironmentFiles(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var envs []*Environment
	var errs []error
	for _, f := range files {
		env, err := LoadEnvironmentFile(f.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		envs = append(envs, env)
	}
	sort.SliceStable(envs, func(i, j int) bool {
		return envs[i].Name < envs[j].Name
	})
	return envs, errors.Join(errs...)
}

// FindEnvironment matches by name first, then by file path.
func FindEnvironment(envs []*Environment, nameOrPath string) (int, bool) {
	target := strings.TrimSpace(nameOrPath)
	if target == "" {
		return -1, false
	}
	for i, env := range envs {
		if env.Name == target {
			return i, true
		}
	}
	abs, _ := filepath.Abs(target)
	for i, env := range envs {
		if env.Path == target {
			return i, true
		}
		if envAbs, err := filepath.Abs(env.Path); err == nil && abs != "" && envAbs == abs {
			return i, true
		}
	}
	return -1, false
}

// SuggestEnvironment returns the closest environment name to target, or "".
func SuggestEnvironment(envs []*Environment, target string) string {
	if len(envs) == 0 {
		return ""
	}
	names := make([]string, len(envs))
	for i, env := range envs {
		names[i] = env.Name
	}
	ranks := fuzzy.RankFindFold(target, names)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
