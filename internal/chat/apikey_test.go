package chat_test

import (
	"errors"
	"testing"

	"legalgist/internal/chat"
	"legalgist/internal/testutil"
)

func TestKeyResolver(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		stored     string
		wantKey    string
		wantSource chat.KeySource
	}{
		{"nothing", "", "", "", chat.KeySourceNone},
		{"stored only", "", "stored-key", "stored-key", chat.KeySourceStored},
		{"configured wins", "cfg-key", "stored-key", "cfg-key", chat.KeySourceConfigured},
		{"whitespace configured is ignored", "  ", "stored-key", "stored-key", chat.KeySourceStored},
		{"blank stored is ignored", "", "   ", "", chat.KeySourceNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := testutil.NewTestStore()
			if tt.stored != "" {
				_ = kv.Set(chat.APIKeyKey, []byte(tt.stored))
			}
			r := chat.NewKeyResolver(tt.configured, kv, chat.NewNopLogger())

			if got := r.Resolve(); got != tt.wantKey {
				t.Errorf("Resolve() = %q, want %q", got, tt.wantKey)
			}
			if got := r.Source(); got != tt.wantSource {
				t.Errorf("Source() = %q, want %q", got, tt.wantSource)
			}
		})
	}
}

func TestKeyResolver_SaveClear(t *testing.T) {
	kv := testutil.NewTestStore()
	r := chat.NewKeyResolver("", kv, chat.NewNopLogger())

	if err := r.Save("   "); !errors.Is(err, chat.ErrEmptyAPIKey) {
		t.Errorf("Save(blank) error = %v, want ErrEmptyAPIKey", err)
	}

	if err := r.Save("  AIza-test \n"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := r.Resolve(); got != "AIza-test" {
		t.Errorf("Resolve() = %q, want %q", got, "AIza-test")
	}

	if err := r.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := r.Source(); got != chat.KeySourceNone {
		t.Errorf("Source() after Clear = %q, want %q", got, chat.KeySourceNone)
	}
}

func TestKeyResolver_ReadFailure(t *testing.T) {
	kv := testutil.NewFaultyStore()
	_ = kv.Set(chat.APIKeyKey, []byte("k"))
	kv.FailGet(true)

	r := chat.NewKeyResolver("", kv, chat.NewNopLogger())
	if got := r.Resolve(); got != "" {
		t.Errorf("Resolve() = %q, want empty", got)
	}
}
