// Package storage provides the key-value backends that hold the client's
// local state.
package storage

import (
	"sync"

	"legalgist/internal/chat"
)

// MemoryStore is an in-memory implementation of chat.KeyValueStore.
// Values are copied in and out. Safe for concurrent use.
type MemoryStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

var _ chat.KeyValueStore = (*MemoryStore)(nil)
