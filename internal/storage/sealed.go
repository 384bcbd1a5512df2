package storage

import (
	"fmt"

	"legalgist/internal/chat"
	"legalgist/internal/encryption"
)

// SealedStore wraps another store and seals every value before it is written.
// A value that fails to open is returned as an error from Get.
type SealedStore struct {
	inner  chat.KeyValueStore
	sealer encryption.Sealer
}

// NewSealedStore wraps inner with sealer.
func NewSealedStore(inner chat.KeyValueStore, sealer encryption.Sealer) *SealedStore {
	return &SealedStore{inner: inner, sealer: sealer}
}

func (s *SealedStore) Get(key string) ([]byte, bool, error) {
	sealed, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}

	data, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, false, fmt.Errorf("opening %q: %w", key, err)
	}
	return data, true, nil
}

func (s *SealedStore) Set(key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("sealing %q: %w", key, err)
	}
	return s.inner.Set(key, sealed)
}

func (s *SealedStore) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *SealedStore) Close() error {
	return s.inner.Close()
}

var _ chat.KeyValueStore = (*SealedStore)(nil)
