package chat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAPIKey is returned when saving a blank API key.
var ErrEmptyAPIKey = errors.New("API key must not be empty")

// KeySource says where the API key in effect comes from.
type KeySource string

const (
	KeySourceConfigured KeySource = "configured"
	KeySourceStored     KeySource = "stored"
	KeySourceNone       KeySource = "none"
)

// KeyResolver resolves the LLM API key: a configured key wins, then a key the
// user saved in local storage, else none.
type KeyResolver struct {
	configured string
	kv         KeyValueStore
	logger     Logger
}

// NewKeyResolver creates a KeyResolver. configured may be empty.
func NewKeyResolver(configured string, kv KeyValueStore, logger Logger) *KeyResolver {
	return &KeyResolver{
		configured: strings.TrimSpace(configured),
		kv:         kv,
		logger:     logger,
	}
}

// Resolve returns the key in effect, or "" if there is none.
func (r *KeyResolver) Resolve() string {
	key, _ := r.resolve()
	return key
}

// Source reports which source Resolve would use.
func (r *KeyResolver) Source() KeySource {
	_, src := r.resolve()
	return src
}

func (r *KeyResolver) resolve() (string, KeySource) {
	if r.configured != "" {
		return r.configured, KeySourceConfigured
	}

	data, ok, err := r.kv.Get(APIKeyKey)
	if err != nil {
		r.logger.Error("reading stored API key failed", "error", err)
		return "", KeySourceNone
	}
	if ok {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, KeySourceStored
		}
	}
	return "", KeySourceNone
}

// Save stores a user-entered key in local storage.
func (r *KeyResolver) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyAPIKey
	}
	if err := r.kv.Set(APIKeyKey, []byte(key)); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	r.logger.Info("API key saved")
	return nil
}

// Clear removes the stored key. A configured key is unaffected.
func (r *KeyResolver) Clear() error {
	if err := r.kv.Delete(APIKeyKey); err != nil {
		return fmt.Errorf("removing API key: %w", err)
	}
	return nil
}
