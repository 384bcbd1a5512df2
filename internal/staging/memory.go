package staging

import (
	"bytes"
	"fmt"
	"io"
)

// memoryStore keeps staged content in memory.
type memoryStore struct {
	blobs map[string][]byte
	size  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (m *memoryStore) Put(ref string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read content: %w", err)
	}
	m.Remove(ref)
	m.blobs[ref] = data
	m.size += int64(len(data))
	return int64(len(data)), nil
}

func (m *memoryStore) Open(ref string) (io.ReadCloser, error) {
	data, ok := m.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRefNotFound, ref)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) Remove(ref string) bool {
	data, ok := m.blobs[ref]
	if !ok {
		return false
	}
	delete(m.blobs, ref)
	m.size -= int64(len(data))
	return true
}

func (m *memoryStore) Size() (int64, error) {
	return m.size, nil
}

func (m *memoryStore) Len() (int, error) {
	return len(m.blobs), nil
}
