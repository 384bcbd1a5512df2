// Package encryption seals stored values at rest.
package encryption

import (
	"errors"
	"fmt"

	"legalgist/internal/config"
)

// ErrLocked is returned by Open when the private key has not been unlocked.
var ErrLocked = errors.New("private key is locked")

// Sealer encrypts and decrypts whole values.
// Seal only needs the public key; Open needs a prior successful Unlock.
type Sealer interface {
	// Setup generates and stores a new key pair protected by passphrase.
	Setup(passphrase string) error
	// IsConfigured reports whether a key pair exists.
	IsConfigured() bool
	// Unlock makes the private key available to Open.
	Unlock(passphrase string) error
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// NewSealerFromConfig creates a Sealer based on the encryption type.
// Type "none" has no sealer and is handled by the caller.
func NewSealerFromConfig(cfg config.EncryptionConfig) (Sealer, error) {
	switch cfg.Type {
	case "age":
		return NewAgeSealer(cfg), nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
