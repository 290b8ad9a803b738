package history

import (
	"container/list"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// NoEnvironment is the environment key used when no environment is active.
const NoEnvironment = "none"

const defaultMaxEntries = 1000

var ErrMalformedStore = errors.New("history: malformed store")

// LoadError reports a history snapshot that could not be read. The store that
// returned it is usable and empty.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load history: %v", e.Err)
	}
	return fmt.Sprintf("load history %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// EnvKey maps an environment name to its history key.
func EnvKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return NoEnvironment
	}
	return name
}

// Record is one persisted value. Recency grows with every touch, so the
// largest Recency is the most recently used value across the whole store.
type Record struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	Value       string `toml:"value"`
	Recency     uint64 `toml:"recency"`
}

type key struct {
	name  string
	env   string
	value string
}

// Store keeps previously entered variable values, most recently used first,
// bounded globally by maxEntries.
type Store struct {
	mu sync.RWMutex
	// persistMu orders writes so a stale snapshot never lands after a newer one.
	persistMu  sync.Mutex
	backend    Persister
	maxEntries int
	lru        *list.List
	index      map[key]*list.Element
	seq        uint64
}

func NewStore(backend Persister, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Store{
		backend:    backend,
		maxEntries: maxEntries,
		lru:        list.New(),
		index:      make(map[key]*list.Element),
	}
}

// Load replaces the in-memory state with the backend snapshot. A missing
// snapshot yields an empty store. A malformed one also yields an empty store
// and a *LoadError wrapping ErrMalformedStore.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	if s.backend == nil {
		return nil
	}
	records, err := s.backend.Load()
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return err
		}
		return &LoadError{Err: errors.Join(ErrMalformedStore, err)}
	}
	s.importLocked(records)
	return nil
}

func (s *Store) resetLocked() {
	s.lru.Init()
	s.index = make(map[key]*list.Element)
	s.seq = 0
}

func (s *Store) importLocked(records []Record) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Recency > sorted[j].Recency
	})
	for _, rec := range sorted {
		if rec.Name == "" {
			continue
		}
		k := key{name: rec.Name, env: EnvKey(rec.Environment), value: rec.Value}
		if _, ok := s.index[k]; ok {
			continue
		}
		if s.lru.Len() >= s.maxEntries {
			break
		}
		rec.Environment = k.env
		s.index[k] = s.lru.PushBack(&rec)
		if rec.Recency > s.seq {
			s.seq = rec.Recency
		}
	}
}

// Lookup returns the values stored for name under envKey, most recent first.
func (s *Store) Lookup(name, envKey string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	envKey = EnvKey(envKey)
	var out []string
	for el := s.lru.Front(); el != nil; el = el.Next() {
		rec := el.Value.(*Record)
		if rec.Name == name && rec.Environment == envKey {
			out = append(out, rec.Value)
		}
	}
	return out
}

// Record inserts value at the front of its key, or promotes it when already
// present. When the store grows past its bound the least recently touched
// entry across all keys is evicted.
func (s *Store) Record(name, envKey, value string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	k := key{name: name, env: EnvKey(envKey), value: value}
	if el, ok := s.index[k]; ok {
		el.Value.(*Record).Recency = s.seq
		s.lru.MoveToFront(el)
		return
	}
	rec := &Record{Name: k.name, Environment: k.env, Value: value, Recency: s.seq}
	s.index[k] = s.lru.PushFront(rec)
	for s.lru.Len() > s.maxEntries {
		s.evictOldestLocked()
	}
}

func (s *Store) evictOldestLocked() {
	el := s.lru.Back()
	if el == nil {
		return
	}
	rec := el.Value.(*Record)
	delete(s.index, key{name: rec.Name, env: rec.Environment, value: rec.Value})
	s.lru.Remove(el)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lru.Len()
}

// Snapshot returns every record, most recent first.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, s.lru.Len())
	for el := s.lru.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*Record))
	}
	return out
}

// Persist writes the current snapshot through the backend. Concurrent calls
// are serialized and each takes its snapshot once it holds the write turn.
func (s *Store) Persist() error {
	if s.backend == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.backend.Persist(s.Snapshot())
}
