package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// DefaultTitle is the title of a conversation until its first user message.
const DefaultTitle = "New Chat"

// titleLength is the number of characters kept when deriving a title.
const titleLength = 30

// ErrConversationNotFound is returned by Append when the target conversation does not exist.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore is the only reader and writer of the conversation document.
// Every operation loads the whole document, applies its change and writes the
// whole document back under ConversationsKey.
type ConversationStore struct {
	kv     KeyValueStore
	clock  Clock
	idgen  IDGenerator
	logger Logger
	mu     sync.Mutex
}

// NewConversationStore creates a ConversationStore backed by kv.
func NewConversationStore(kv KeyValueStore, clock Clock, idgen IDGenerator, logger Logger) *ConversationStore {
	return &ConversationStore{
		kv:     kv,
		clock:  clock,
		idgen:  idgen,
		logger: logger,
	}
}

// List returns all conversations, newest first.
// Unreadable or corrupt storage yields an empty list.
func (s *ConversationStore) List() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().Conversations
}

// Get returns the conversation with the given id, or nil.
func (s *ConversationStore) Get(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().find(id)
}

// Active returns the active conversation.
// Returns nil if no pointer is set or if it references a conversation that no
// longer exists. A dangling pointer is left as is.
func (s *ConversationStore) Active() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	if st.ActiveConversationID == "" {
		return nil
	}
	return st.find(st.ActiveConversationID)
}

// SetActive overwrites the active pointer. The id is not checked for existence.
func (s *ConversationStore) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	st.ActiveConversationID = id
	return s.save(st)
}

// Create inserts a new empty conversation at the front of the collection and
// makes it active.
func (s *ConversationStore) Create() (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	conv := &Conversation{
		ID:        s.idgen.New(),
		Title:     DefaultTitle,
		Messages:  []*Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	st, err := s.read()
	if err != nil {
		return nil, err
	}
	st.Conversations = append([]*Conversation{conv}, st.Conversations...)
	st.ActiveConversationID = conv.ID
	if err := s.save(st); err != nil {
		return nil, err
	}

	s.logger.Debug("conversation created", "conversation", conv.ID)
	return conv, nil
}

// Append adds msg to the end of the conversation and bumps its update time.
// The first user message appended while the title is still DefaultTitle
// becomes the title.
// Returns ErrConversationNotFound without writing if the conversation is missing.
// A storage read failure is returned and nothing is written.
func (s *ConversationStore) Append(conversationID string, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	conv := st.find(conversationID)
	if conv == nil {
		return fmt.Errorf("appending to %s: %w", conversationID, ErrConversationNotFound)
	}

	conv.Messages = append(conv.Messages, msg)

	// updatedAt never moves backwards, even if the wall clock does.
	if now := s.clock.Now(); now.After(conv.UpdatedAt) {
		conv.UpdatedAt = now
	}

	if conv.Title == DefaultTitle && msg.Role == RoleUser {
		conv.Title = deriveTitle(msg.Content)
	}

	return s.save(st)
}

// Delete removes the conversation. If it was active, the first remaining
// conversation becomes active, or the pointer is cleared when none remain.
func (s *ConversationStore) Delete(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	kept := make([]*Conversation, 0, len(st.Conversations))
	for _, c := range st.Conversations {
		if c.ID != conversationID {
			kept = append(kept, c)
		}
	}
	st.Conversations = kept

	if st.ActiveConversationID == conversationID {
		st.ActiveConversationID = ""
		if len(kept) > 0 {
			st.ActiveConversationID = kept[0].ID
		}
	}

	return s.save(st)
}

// Clear replaces the stored document with an empty one.
func (s *ConversationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(emptyState())
}

// load reads the stored document for queries. A document that cannot be
// read is logged and treated as empty.
func (s *ConversationStore) load() *state {
	st, err := s.read()
	if err != nil {
		s.logger.Error("reading conversations, treating as empty", "error", err)
		return emptyState()
	}
	return st
}

// read reads the stored document. Missing or unparsable data is an empty
// document; a storage failure is returned so that mutations never overwrite
// a document they could not see.
func (s *ConversationStore) read() (*state, error) {
	data, ok, err := s.kv.Get(ConversationsKey)
	if err != nil {
		return nil, fmt.Errorf("reading conversations: %w", err)
	}
	if !ok {
		return emptyState(), nil
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Error("parsing conversations, treating as empty", "error", err)
		return emptyState(), nil
	}
	if st.Conversations == nil {
		st.Conversations = []*Conversation{}
	}
	for _, c := range st.Conversations {
		if c.Messages == nil {
			c.Messages = []*Message{}
		}
	}
	return &st, nil
}

func emptyState() *state {
	return &state{Conversations: []*Conversation{}}
}

// save writes the whole document.
func (s *ConversationStore) save(st *state) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding conversations: %w", err)
	}
	if err := s.kv.Set(ConversationsKey, data); err != nil {
		return fmt.Errorf("saving conversations: %w", err)
	}
	return nil
}

// deriveTitle truncates content to titleLength characters, marking truncation with "...".
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLength {
		return content
	}
	return string(runes[:titleLength]) + "..."
}
