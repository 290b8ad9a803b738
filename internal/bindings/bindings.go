package bindings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
)

// Format identifies the serialization format for key binding configs.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Source describes where the bindings config was loaded from.
type Source struct {
	Path   string
	Format Format
}

// ActionID identifies a session action.
type ActionID string

// Map resolves normalized key strings to actions, per context.
type Map struct {
	tables map[Context]map[string]ActionID
	keys   map[Context]map[ActionID][]string
}

// Load reads bindings.toml or bindings.json from dir. Missing files fall back to defaults.
func Load(dir string) (*Map, Source, error) {
	candidates := []Source{
		{Path: filepath.Join(dir, "bindings.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "bindings.json"), Format: FormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read bindings %q: %w", candidate.Path, err),
			)
			continue
		}

		overrides, err := parseConfig(data, candidate.Format)
		if err != nil {
			return nil, Source{}, fmt.Errorf("parse bindings %q: %w", candidate.Path, err)
		}
		built, err := buildMap(overrides)
		if err != nil {
			return nil, Source{}, fmt.Errorf("apply bindings %q: %w", candidate.Path, err)
		}
		return built, candidate, nil
	}

	if accumulated != nil {
		return nil, Source{}, accumulated
	}

	built, err := buildMap(nil)
	if err != nil {
		return nil, Source{}, err
	}
	return built, Source{Path: candidates[0].Path, Format: FormatTOML}, nil
}

// DefaultMap builds the built-in bindings without consulting disk.
func DefaultMap() *Map {
	m, err := buildMap(nil)
	if err != nil {
		panic(err)
	}
	return m
}

// Match returns the action bound to key in ctx.
func (m *Map) Match(ctx Context, key string) (ActionID, bool) {
	if m == nil {
		return "", false
	}
	action, ok := m.tables[ctx][NormalizeKeyString(key)]
	return action, ok
}

// Keys returns the keys bound to action in ctx, in configured order.
func (m *Map) Keys(ctx Context, action ActionID) []string {
	if m == nil {
		return nil
	}
	keys := m.keys[ctx][action]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

type configFile struct {
	Select map[string][]string `json:"select" toml:"select"`
	Prompt map[string][]string `json:"prompt" toml:"prompt"`
}

type overrideSet map[Context]map[ActionID][]string

func parseConfig(data []byte, format Format) (overrideSet, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var payload configFile
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	overrides := make(overrideSet)
	for ctx, table := range map[Context]map[string][]string{
		ContextSelect: payload.Select,
		ContextPrompt: payload.Prompt,
	} {
		if len(table) == 0 {
			continue
		}
		parsed := make(map[ActionID][]string, len(table))
		for name, raws := range table {
			id := ActionID(name)
			if _, ok := definitionLookup[id]; !ok {
				return nil, fmt.Errorf("%s: unknown action %q", ctx, name)
			}
			keys := make([]string, 0, len(raws))
			for _, raw := range raws {
				key, err := normalizeStep(raw)
				if err != nil {
					return nil, fmt.Errorf("%s action %q: %w", ctx, name, err)
				}
				keys = append(keys, key)
			}
			parsed[id] = keys
		}
		overrides[ctx] = parsed
	}
	return overrides, nil
}

func buildMap(overrides overrideSet) (*Map, error) {
	m := &Map{
		tables: make(map[Context]map[string]ActionID, len(contexts)),
		keys:   make(map[Context]map[ActionID][]string, len(contexts)),
	}
	for _, ctx := range contexts {
		table := make(map[string]ActionID)
		keys := make(map[ActionID][]string)
		for _, def := range definitions {
			bound := def.defaults[ctx]
			if override, ok := overrides[ctx][def.id]; ok {
				bound = override
			}
			seen := make(map[string]struct{}, len(bound))
			for _, key := range bound {
				if _, ok := seen[key]; ok {
					return nil, fmt.Errorf("%s action %s: duplicate binding %q", ctx, def.id, key)
				}
				seen[key] = struct{}{}
				if existing, ok := table[key]; ok {
					return nil, fmt.Errorf(
						"%s: binding %q assigned to both %s and %s",
						ctx,
						key,
						existing,
						def.id,
					)
				}
				table[key] = def.id
				keys[def.id] = append(keys[def.id], key)
			}
		}
		m.tables[ctx] = table
		m.keys[ctx] = keys
	}
	return m, nil
}

func normalizeStep(raw string) (string, error) {
	if raw == " " {
		return "space", nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty key step")
	}
	if raw == "?" {
		raw = "shift+/"
	}

	runes := []rune(raw)
	if len(runes) == 1 {
		r := runes[0]
		if unicode.IsLetter(r) && unicode.IsUpper(r) {
			return "shift+" + strings.ToLower(raw), nil
		}
		return strings.ToLower(raw), nil
	}

	if !strings.Contains(raw, "+") {
		return strings.ToLower(raw), nil
	}

	parts := strings.Split(raw, "+")
	var keyParts []string
	modSet := make(map[string]struct{})
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		switch lower {
		case "ctrl", "control":
			modSet["ctrl"] = struct{}{}
		case "alt", "option":
			modSet["alt"] = struct{}{}
		case "shift":
			modSet["shift"] = struct{}{}
		case "cmd", "command", "meta":
			modSet["cmd"] = struct{}{}
		default:
			keyParts = append(keyParts, lower)
		}
	}
	if len(keyParts) == 0 {
		return "", fmt.Errorf("binding %q missing key", raw)
	}
	key := strings.Join(keyParts, "+")
	mods := orderedModifiers(modSet)
	if len(mods) == 0 {
		return key, nil
	}
	return strings.Join(append(mods, key), "+"), nil
}

func orderedModifiers(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	order := []string{"ctrl", "alt", "shift", "cmd"}
	out := make([]string, 0, len(set))
	for _, mod := range order {
		if _, ok := set[mod]; ok {
			out = append(out, mod)
		}
	}
	return out
}

// NormalizeKeyString converts runtime key strings into canonical form for lookup.
func NormalizeKeyString(raw string) string {
	normalized, err := normalizeStep(raw)
	if err != nil {
		return ""
	}
	return normalized
}

// KnownActions returns the sorted list of action identifiers.
func KnownActions() []ActionID {
	ids := make([]ActionID, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
