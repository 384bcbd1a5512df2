package encryption

import (
	"bytes"
	"testing"

	"legalgist/internal/config"
)

func TestTestSealer_SealOpen(t *testing.T) {
	t.Parallel()
	s := NewTestSealer()

	sealed, err := s.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if bytes.Equal(sealed, []byte("hello")) {
		t.Error("sealed output equals plaintext")
	}

	got, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Open() = %q, want %q", got, "hello")
	}
}

func TestTestSealer_OpenInvalidHeader(t *testing.T) {
	t.Parallel()
	if _, err := NewTestSealer().Open([]byte("plain")); err == nil {
		t.Error("Open() without header should return error")
	}
}

func TestTestSealer_Setup(t *testing.T) {
	t.Parallel()
	s := NewTestSealer()
	if err := s.Setup("any"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !s.setupCalled {
		t.Error("Setup() did not record that it was called")
	}
}

func TestNewSealerFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantErr bool
	}{
		{"age", "age", false},
		{"test", "test", false},
		{"none is not a sealer", "none", true},
		{"unknown", "rot13", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSealerFromConfig(config.EncryptionConfig{Type: tt.typ})
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewSealerFromConfig(%q) expected error", tt.typ)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSealerFromConfig(%q) error = %v", tt.typ, err)
			}
			if s == nil {
				t.Fatal("NewSealerFromConfig() returned nil sealer")
			}
		})
	}
}
