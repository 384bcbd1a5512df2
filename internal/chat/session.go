package chat

import (
	"encoding/json"
	"fmt"
)

// IdentityStore holds at most one locally signed-in Identity.
// There is no credential check; Login simply records who is using the client.
type IdentityStore struct {
	kv     KeyValueStore
	idgen  IDGenerator
	logger Logger
}

// NewIdentityStore creates an IdentityStore backed by kv.
func NewIdentityStore(kv KeyValueStore, idgen IDGenerator, logger Logger) *IdentityStore {
	return &IdentityStore{kv: kv, idgen: idgen, logger: logger}
}

// Current returns the signed-in identity, or nil if there is none.
// An unreadable record is logged and treated as signed out.
func (s *IdentityStore) Current() *Identity {
	data, ok, err := s.kv.Get(IdentityKey)
	if err != nil {
		s.logger.Error("reading stored user failed", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		s.logger.Error("parsing stored user failed", "error", err)
		return nil
	}
	return &id
}

// Login creates a new identity with a fresh id and replaces any existing one.
func (s *IdentityStore) Login(email, name string) (*Identity, error) {
	id := &Identity{
		ID:    s.idgen.New(),
		Name:  name,
		Email: email,
	}

	data, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("encoding user: %w", err)
	}
	if err := s.kv.Set(IdentityKey, data); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	s.logger.Info("signed in", "user", id.ID)
	return id, nil
}

// Logout removes the stored identity.
func (s *IdentityStore) Logout() error {
	if err := s.kv.Delete(IdentityKey); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}
