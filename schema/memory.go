package schema

import (
	"sync"

	"github.com/rotisserie/eris"
)

// MemoryStorage is a Storage backed by a map. Safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]Record)}
}

func (m *MemoryStorage) GetSchema(name string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[name]
	if !ok {
		return Record{}, eris.Wrapf(ErrNoSchemaFound, "component %s", name)
	}
	return record, nil
}

func (m *MemoryStorage) SetSchema(record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.Name] = record
	return nil
}
