package chat_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"legalgist/internal/chat"
	"legalgist/internal/testutil"
)

func newTestConversationStore(kv chat.KeyValueStore) (*chat.ConversationStore, *testutil.StubClock) {
	clock := testutil.FixedClock()
	return chat.NewConversationStore(kv, clock, testutil.NewStubIDGenerator(), chat.NewNopLogger()), clock
}

func userMessage(id, content string) *chat.Message {
	return &chat.Message{ID: id, Role: chat.RoleUser, Content: content}
}

func TestConversationStore_CreateAndList(t *testing.T) {
	store, clock := newTestConversationStore(testutil.NewTestStore())

	if got := store.List(); len(got) != 0 {
		t.Fatalf("List() on empty storage = %d conversations, want 0", len(got))
	}

	first, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	clock.Advance(time.Minute)
	second, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first.Title != chat.DefaultTitle {
		t.Errorf("Title = %q, want %q", first.Title, chat.DefaultTitle)
	}
	if len(first.Messages) != 0 {
		t.Errorf("len(Messages) = %d, want 0", len(first.Messages))
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Errorf("CreatedAt = %v, UpdatedAt = %v, want equal", first.CreatedAt, first.UpdatedAt)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d conversations, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want newest first [%s %s]", list[0].ID, list[1].ID, second.ID, first.ID)
	}

	active := store.Active()
	if active == nil || active.ID != second.ID {
		t.Errorf("Active() = %v, want %s", active, second.ID)
	}
}

func TestConversationStore_SurvivesRestart(t *testing.T) {
	kv := testutil.NewTestStore()
	store, _ := newTestConversationStore(kv)

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Append(conv.ID, userMessage("m1", "hello")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	restarted, _ := newTestConversationStore(kv)

	got := restarted.Get(conv.ID)
	if got == nil {
		t.Fatal("Get() after restart = nil")
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("Messages after restart = %+v", got.Messages)
	}
	if got.Title != "hello" {
		t.Errorf("Title after restart = %q, want %q", got.Title, "hello")
	}
	if a := restarted.Active(); a == nil || a.ID != conv.ID {
		t.Errorf("Active() after restart = %v, want %s", a, conv.ID)
	}
}

func TestConversationStore_Title(t *testing.T) {
	exactly30 := strings.Repeat("a", 30)
	long := "What are the termination clauses in this lease agreement?"

	tests := []struct {
		name     string
		messages []*chat.Message
		want     string
	}{
		{
			name:     "short first user message",
			messages: []*chat.Message{userMessage("m1", "Hi")},
			want:     "Hi",
		},
		{
			name:     "exactly 30 characters is not truncated",
			messages: []*chat.Message{userMessage("m1", exactly30)},
			want:     exactly30,
		},
		{
			name:     "long message is truncated",
			messages: []*chat.Message{userMessage("m1", long)},
			want:     long[:30] + "...",
		},
		{
			name:     "multibyte characters count once",
			messages: []*chat.Message{userMessage("m1", strings.Repeat("é", 31))},
			want:     strings.Repeat("é", 30) + "...",
		},
		{
			name: "only first user message counts",
			messages: []*chat.Message{
				userMessage("m1", "first question"),
				userMessage("m2", "second question"),
			},
			want: "first question",
		},
		{
			name: "assistant message does not set title",
			messages: []*chat.Message{
				{ID: "m1", Role: chat.RoleAssistant, Content: "Welcome"},
				userMessage("m2", "Question"),
			},
			want: "Question",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestConversationStore(testutil.NewTestStore())
			conv, err := store.Create()
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for _, m := range tt.messages {
				if err := store.Append(conv.ID, m); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}
			if got := store.Get(conv.ID).Title; got != tt.want {
				t.Errorf("Title = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConversationStore_Append_OrderAndUpdatedAt(t *testing.T) {
	store, clock := newTestConversationStore(testutil.NewTestStore())
	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	created := conv.UpdatedAt

	clock.Advance(time.Second)
	if err := store.Append(conv.ID, userMessage("m1", "one")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	afterFirst := store.Get(conv.ID).UpdatedAt
	if !afterFirst.After(created) {
		t.Errorf("UpdatedAt = %v, want after %v", afterFirst, created)
	}

	// A clock that goes backwards must not move updatedAt backwards.
	clock.Set(created.Add(-time.Hour))
	if err := store.Append(conv.ID, &chat.Message{ID: "m2", Role: chat.RoleAssistant, Content: "two"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := store.Get(conv.ID)
	if got.UpdatedAt.Before(afterFirst) {
		t.Errorf("UpdatedAt moved backwards: %v < %v", got.UpdatedAt, afterFirst)
	}
	if len(got.Messages) != 2 || got.Messages[0].ID != "m1" || got.Messages[1].ID != "m2" {
		t.Errorf("Messages = %+v, want [m1 m2]", got.Messages)
	}
}

func TestConversationStore_Append_UpdatedAtNeverDecreases(t *testing.T) {
	store, clock := newTestConversationStore(testutil.NewTestStore())
	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	clock.Queue(
		testutil.Epoch.Add(2*time.Second),
		testutil.Epoch.Add(time.Second),
		testutil.Epoch.Add(3*time.Second),
	)
	want := []time.Time{
		testutil.Epoch.Add(2 * time.Second),
		testutil.Epoch.Add(2 * time.Second),
		testutil.Epoch.Add(3 * time.Second),
	}
	for i, w := range want {
		if err := store.Append(conv.ID, userMessage(fmt.Sprintf("m%d", i), "x")); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if got := store.Get(conv.ID).UpdatedAt; !got.Equal(w) {
			t.Errorf("after append %d UpdatedAt = %v, want %v", i, got, w)
		}
	}
}

func TestConversationStore_Append_MissingConversation(t *testing.T) {
	kv := testutil.NewFaultyStore()
	store, _ := newTestConversationStore(kv)
	if _, err := store.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before := kv.SetCalls()

	err := store.Append("does-not-exist", userMessage("m1", "lost"))
	if !errors.Is(err, chat.ErrConversationNotFound) {
		t.Fatalf("Append() error = %v, want ErrConversationNotFound", err)
	}
	if kv.SetCalls() != before {
		t.Errorf("Append() to missing conversation wrote storage")
	}
}

func TestConversationStore_Delete(t *testing.T) {
	t.Run("deleting active selects new first", func(t *testing.T) {
		store, _ := newTestConversationStore(testutil.NewTestStore())
		a, _ := store.Create()
		b, _ := store.Create()
		c, _ := store.Create()

		if err := store.Delete(c.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		if got := store.Get(c.ID); got != nil {
			t.Error("deleted conversation still present")
		}
		if active := store.Active(); active == nil || active.ID != b.ID {
			t.Errorf("Active() = %v, want %s", active, b.ID)
		}
		if len(store.List()) != 2 || store.List()[1].ID != a.ID {
			t.Errorf("List() = %v", store.List())
		}
	})

	t.Run("deleting inactive keeps pointer", func(t *testing.T) {
		store, _ := newTestConversationStore(testutil.NewTestStore())
		a, _ := store.Create()
		b, _ := store.Create()

		if err := store.Delete(a.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if active := store.Active(); active == nil || active.ID != b.ID {
			t.Errorf("Active() = %v, want %s", active, b.ID)
		}
	})

	t.Run("deleting last clears pointer", func(t *testing.T) {
		store, _ := newTestConversationStore(testutil.NewTestStore())
		a, _ := store.Create()

		if err := store.Delete(a.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if active := store.Active(); active != nil {
			t.Errorf("Active() = %v, want nil", active)
		}
		if len(store.List()) != 0 {
			t.Errorf("List() = %d conversations, want 0", len(store.List()))
		}
	})
}

func TestConversationStore_SetActive(t *testing.T) {
	store, _ := newTestConversationStore(testutil.NewTestStore())
	a, _ := store.Create()
	_, _ = store.Create()

	if err := store.SetActive(a.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if active := store.Active(); active == nil || active.ID != a.ID {
		t.Errorf("Active() = %v, want %s", active, a.ID)
	}

	if err := store.SetActive("ghost"); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if active := store.Active(); active != nil {
		t.Errorf("Active() with dangling pointer = %v, want nil", active)
	}
}

func TestConversationStore_Clear(t *testing.T) {
	store, _ := newTestConversationStore(testutil.NewTestStore())
	_, _ = store.Create()
	_, _ = store.Create()

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(store.List()) != 0 {
		t.Errorf("List() = %d conversations, want 0", len(store.List()))
	}
	if store.Active() != nil {
		t.Error("Active() after Clear() should be nil")
	}
}

func TestConversationStore_CorruptStorage(t *testing.T) {
	for _, raw := range []string{"{not json", `"a string"`, `{"conversations":null}`} {
		t.Run(raw, func(t *testing.T) {
			kv := testutil.NewTestStore()
			if err := kv.Set(chat.ConversationsKey, []byte(raw)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			store, _ := newTestConversationStore(kv)

			if got := store.List(); len(got) != 0 {
				t.Errorf("List() = %d conversations, want 0", len(got))
			}
			if store.Active() != nil {
				t.Error("Active() should be nil")
			}

			conv, err := store.Create()
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if got := store.List(); len(got) != 1 || got[0].ID != conv.ID {
				t.Errorf("List() after Create() = %v", got)
			}
		})
	}
}

func TestConversationStore_StorageFailures(t *testing.T) {
	t.Run("unreadable storage reads as empty", func(t *testing.T) {
		kv := testutil.NewFaultyStore()
		store, _ := newTestConversationStore(kv)
		_, _ = store.Create()

		kv.FailGet(true)
		if got := store.List(); len(got) != 0 {
			t.Errorf("List() = %d conversations, want 0", len(got))
		}
		if store.Active() != nil {
			t.Error("Active() should be nil")
		}
	})

	t.Run("read failure blocks mutations", func(t *testing.T) {
		kv := testutil.NewFaultyStore()
		store, _ := newTestConversationStore(kv)
		var ids []string
		for i := 0; i < 3; i++ {
			conv, err := store.Create()
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			ids = append(ids, conv.ID)
		}
		writes := kv.SetCalls()

		kv.FailGet(true)
		if _, err := store.Create(); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Create() error = %v, want ErrInjected", err)
		}
		if err := store.Append(ids[0], userMessage("m1", "x")); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Append() error = %v, want ErrInjected", err)
		}
		if err := store.SetActive(ids[1]); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("SetActive() error = %v, want ErrInjected", err)
		}
		if err := store.Delete(ids[2]); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Delete() error = %v, want ErrInjected", err)
		}
		if got := kv.SetCalls(); got != writes {
			t.Errorf("Set() called %d times after read failure, want 0", got-writes)
		}

		kv.FailGet(false)
		if got := store.List(); len(got) != 3 {
			t.Errorf("List() = %d conversations, want 3", len(got))
		}
		if active := store.Active(); active == nil || active.ID != ids[2] {
			t.Errorf("Active() = %v, want %s", active, ids[2])
		}
	})

	t.Run("write failure is returned", func(t *testing.T) {
		kv := testutil.NewFaultyStore()
		store, _ := newTestConversationStore(kv)
		conv, _ := store.Create()

		kv.FailSet(true)
		if _, err := store.Create(); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Create() error = %v, want ErrInjected", err)
		}
		if err := store.Append(conv.ID, userMessage("m1", "x")); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Append() error = %v, want ErrInjected", err)
		}
		if err := store.Delete(conv.ID); !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("Delete() error = %v, want ErrInjected", err)
		}
	})
}

func TestConversationStore_AttachmentRefNotPersisted(t *testing.T) {
	kv := testutil.NewTestStore()
	store, _ := newTestConversationStore(kv)
	conv, _ := store.Create()

	msg := userMessage("m1", "see attached")
	msg.Attachments = []chat.Attachment{{
		ID:       "a1",
		Name:     "lease.pdf",
		MimeType: chat.MimeTypePDF,
		Size:     5,
		Ref:      "blob:123",
		Data:     "data:application/pdf;base64,JVBERi0=",
	}}
	if err := store.Append(conv.ID, msg); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	raw, _, _ := kv.Get(chat.ConversationsKey)
	if strings.Contains(string(raw), "blob:123") {
		t.Error("transient reference was persisted")
	}

	restarted, _ := newTestConversationStore(kv)
	att := restarted.Get(conv.ID).Messages[0].Attachments[0]
	if att.Ref != "" {
		t.Errorf("Ref = %q after reload, want empty", att.Ref)
	}
	if att.Data != "data:application/pdf;base64,JVBERi0=" {
		t.Errorf("Data = %q after reload", att.Data)
	}
	if att.Name != "lease.pdf" || att.Size != 5 {
		t.Errorf("attachment metadata lost: %+v", att)
	}
}
