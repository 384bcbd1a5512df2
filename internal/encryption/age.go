package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"legalgist/internal/config"
)

// AgeSealer seals values with filippo.io/age using an X25519 key pair.
// The public key is stored in plaintext; the private key is encrypted with a
// passphrase using age's scrypt recipient.
type AgeSealer struct {
	publicKeyPath  string
	privateKeyPath string
	identity       age.Identity
}

var _ Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates an AgeSealer using the key paths from cfg.
func NewAgeSealer(cfg config.EncryptionConfig) *AgeSealer {
	return &AgeSealer{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

func (s *AgeSealer) Setup(passphrase string) error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	for _, p := range []string{s.publicKeyPath, s.privateKeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			return fmt.Errorf("creating key directory: %w", err)
		}
	}

	if err := os.WriteFile(s.publicKeyPath, []byte(identity.Recipient().String()+"\n"), 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, identity.String()+"\n"); err != nil {
		return fmt.Errorf("writing encrypted private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing encrypted private key: %w", err)
	}

	if err := os.WriteFile(s.privateKeyPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

func (s *AgeSealer) IsConfigured() bool {
	if _, err := os.Stat(s.publicKeyPath); err != nil {
		return false
	}
	if _, err := os.Stat(s.privateKeyPath); err != nil {
		return false
	}
	return true
}

func (s *AgeSealer) Unlock(passphrase string) error {
	privData, err := os.ReadFile(s.privateKeyPath)
	if err != nil {
		return fmt.Errorf("reading private key file: %w", err)
	}

	scrypt, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(privData), scrypt)
	if err != nil {
		return fmt.Errorf("decrypting private key: %w", err)
	}

	identities, err := age.ParseIdentities(r)
	if err != nil {
		return fmt.Errorf("parsing private key: %w", err)
	}
	if len(identities) == 0 {
		return fmt.Errorf("no identities found in private key")
	}

	s.identity = identities[0]
	return nil
}

func (s *AgeSealer) Seal(plaintext []byte) ([]byte, error) {
	recipient, err := s.loadRecipient()
	if err != nil {
		return nil, fmt.Errorf("loading public key: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *AgeSealer) Open(ciphertext []byte) ([]byte, error) {
	if s.identity == nil {
		return nil, ErrLocked
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), s.identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}
	return data, nil
}

func (s *AgeSealer) loadRecipient() (age.Recipient, error) {
	pubData, err := os.ReadFile(s.publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}

	recipients, err := age.ParseRecipients(bytes.NewReader(pubData))
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found in public key file")
	}
	return recipients[0], nil
}
