package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of SnapshotStore.
// Documents are stored encoded so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

func (m *MemoryStore) Save(ctx context.Context, slot string, doc Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = data
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, slot string) (Document, error) {
	m.mu.RLock()
	data, ok := m.slots[slot]
	m.mu.RUnlock()

	if !ok {
		return Document{}, ErrNotFound
	}
	return Decode(data)
}

func (m *MemoryStore) Slots(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.slots))
	for name := range m.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
