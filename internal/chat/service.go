package chat

import (
	"context"
	"errors"
	"fmt"

	"legalgist/internal/llm"
)

// Replies produced locally instead of by the model.
const (
	MissingKeyReply = "Please set your Gemini API key using the 'gist key set' command."
	ApologyReply    = "I'm sorry, I encountered an error processing your request. Please try again."
)

// Service runs a chat turn across the stores, the encoder and the model.
type Service struct {
	conversations *ConversationStore
	identities    *IdentityStore
	keys          *KeyResolver
	encoder       *Encoder
	generator     Generator
	logger        Logger
	clock         Clock
	idgen         IDGenerator
}

// NewService creates a new Service with the provided dependencies.
func NewService(conversations *ConversationStore, identities *IdentityStore, keys *KeyResolver, encoder *Encoder, generator Generator, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		conversations: conversations,
		identities:    identities,
		keys:          keys,
		encoder:       encoder,
		generator:     generator,
		logger:        logger,
		clock:         clock,
		idgen:         idgen,
	}
}

// SendResult is the outcome of one chat turn.
type SendResult struct {
	ConversationID string
	UserMessage    *Message
	Reply          *Message
}

// Send appends a user message with its attachments to the conversation, asks
// the model for a reply and appends the reply.
//
// An empty conversationID starts a new conversation. A conversation that
// vanished is logged and the turn still runs. Model failures and a missing API
// key produce local replies rather than errors. Errors are returned only when
// storage cannot be read or written. Staged references in atts are not released.
func (s *Service) Send(ctx context.Context, conversationID, content string, atts []Attachment) (*SendResult, error) {
	if conversationID == "" {
		conv, err := s.conversations.Create()
		if err != nil {
			return nil, fmt.Errorf("starting conversation: %w", err)
		}
		conversationID = conv.ID
	}

	var history []*Message
	if conv := s.conversations.Get(conversationID); conv != nil {
		history = conv.Messages
	}

	userMsg := &Message{
		ID:          s.idgen.New(),
		Role:        RoleUser,
		Content:     content,
		CreatedAt:   s.clock.Now(),
		Attachments: s.encoder.EncodeAll(atts),
	}
	if id := s.identities.Current(); id != nil {
		userMsg.AuthorName = id.Name
	}
	if err := s.append(conversationID, userMsg); err != nil {
		return nil, err
	}

	reply := &Message{
		ID:        s.idgen.New(),
		Role:      RoleAssistant,
		Content:   s.generate(ctx, history, userMsg),
		CreatedAt: s.clock.Now(),
	}
	if err := s.append(conversationID, reply); err != nil {
		return nil, err
	}

	return &SendResult{
		ConversationID: conversationID,
		UserMessage:    userMsg,
		Reply:          reply,
	}, nil
}

// generate returns the reply text for msg. It never fails.
func (s *Service) generate(ctx context.Context, history []*Message, msg *Message) string {
	apiKey := s.keys.Resolve()
	if apiKey == "" {
		s.logger.Warn("no API key, skipping model call")
		return MissingKeyReply
	}

	req := llm.BuildRequest(toHistory(history), msg.Content, toRequestAttachments(msg.Attachments))

	text, err := s.generator.Generate(ctx, apiKey, req)
	if err != nil {
		s.logger.Error("generating reply failed", "error", err)
		return ApologyReply
	}
	return text
}

func (s *Service) append(conversationID string, msg *Message) error {
	err := s.conversations.Append(conversationID, msg)
	if errors.Is(err, ErrConversationNotFound) {
		s.logger.Error("message dropped", "conversation", conversationID, "message", msg.ID, "error", err)
		return nil
	}
	return err
}

func toHistory(msgs []*Message) []llm.HistoryMessage {
	out := make([]llm.HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[i] = llm.HistoryMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func toRequestAttachments(atts []Attachment) []llm.Attachment {
	var out []llm.Attachment
	for _, a := range atts {
		out = append(out, llm.Attachment{MimeType: a.MimeType, Data: a.Data})
	}
	return out
}
