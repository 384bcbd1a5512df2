package encryption

import (
	"bytes"
	"fmt"
)

var testHeader = []byte("GISTENC\x00")

// TestSealer prepends a fixed header on Seal and strips it on Open.
// Sealed output differs from the plaintext without any cryptography.
type TestSealer struct {
	setupCalled bool
}

var _ Sealer = (*TestSealer)(nil)

func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Setup(passphrase string) error {
	s.setupCalled = true
	return nil
}

func (s *TestSealer) IsConfigured() bool { return true }

func (s *TestSealer) Unlock(passphrase string) error { return nil }

func (s *TestSealer) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(testHeader)+len(plaintext))
	out = append(out, testHeader...)
	return append(out, plaintext...), nil
}

func (s *TestSealer) Open(ciphertext []byte) ([]byte, error) {
	if !bytes.HasPrefix(ciphertext, testHeader) {
		return nil, fmt.Errorf("invalid test encryption header")
	}
	return append([]byte{}, ciphertext[len(testHeader):]...), nil
}
