package history

// Persister is the durable side of a Store. Persist must replace the previous
// snapshot atomically so an interrupted write leaves the old one intact.
type Persister interface {
	Load() ([]Record, error)
	Persist(records []Record) error
}

// MemoryBackend keeps snapshots in memory. It backs tests and sessions
// started with history disabled.
type MemoryBackend struct {
	Records []Record
	Err     error
	Writes  int
}

func (m *MemoryBackend) Load() ([]Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Record, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *MemoryBackend) Persist(records []Record) error {
	m.Records = make([]Record, len(records))
	copy(m.Records, records)
	m.Writes++
	return nil
}
