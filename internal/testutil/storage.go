package testutil

import (
	"errors"
	"sync"

	"legalgist/internal/chat"
	"legalgist/internal/storage"
)

// ErrInjected is returned by FaultyStore when a fault is enabled.
var ErrInjected = errors.New("injected storage failure")

// NewTestStore returns an empty in-memory key-value store.
func NewTestStore() *storage.MemoryStore {
	return storage.NewMemoryStore()
}

// FaultyStore wraps a store and fails reads or writes on demand.
type FaultyStore struct {
	chat.KeyValueStore

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

// NewFaultyStore wraps an empty in-memory store.
func NewFaultyStore() *FaultyStore {
	return &FaultyStore{KeyValueStore: storage.NewMemoryStore()}
}

// FailGet makes Get return ErrInjected.
func (s *FaultyStore) FailGet(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = fail
}

// FailSet makes Set and Delete return ErrInjected.
func (s *FaultyStore) FailSet(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = fail
}

// SetCalls returns how many times Set was called, including failed calls.
func (s *FaultyStore) SetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}

func (s *FaultyStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, false, ErrInjected
	}
	return s.KeyValueStore.Get(key)
}

func (s *FaultyStore) Set(key string, value []byte) error {
	s.mu.Lock()
	s.setCalls++
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Set(key, value)
}

func (s *FaultyStore) Delete(key string) error {
	s.mu.Lock()
	fail := s.failSet
	s.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return s.KeyValueStore.Delete(key)
}
