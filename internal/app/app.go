package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"legalgist/internal/chat"
	"legalgist/internal/config"
	"legalgist/internal/encryption"
	"legalgist/internal/llm"
	"legalgist/internal/staging"
	"legalgist/internal/storage"
)

// ErrEncryptionNotSetUp is returned when encryption is configured but no key pair exists.
var ErrEncryptionNotSetUp = errors.New("encryption keys not set up (run 'gist config keygen')")

// Options carries values the CLI supplies besides the config file.
type Options struct {
	// LinkedAPIKey is the API key linked into the binary, if any.
	LinkedAPIKey string
	// Passphrase is called to unlock encrypted storage. Only used when
	// encryption is enabled.
	Passphrase func() (string, error)
	// Generator replaces the transport built from the llm config section.
	Generator chat.Generator
}

// GistApp is the application layer between the CLI and the chat service.
// It constructs all dependencies from config, exposes the operations the
// commands need and releases resources on Close.
type GistApp struct {
	cfg           *config.Config
	kv            chat.KeyValueStore
	staging       *staging.Area
	conversations *chat.ConversationStore
	identities    *chat.IdentityStore
	keys          *chat.KeyResolver
	service       *chat.Service
	logger        *slog.Logger
	op            *Operation
	logFile       *os.File
}

// NewGistApp creates a fully wired GistApp from the given config.
// operation identifies the CLI command being run (e.g. "send", "chat-list").
// The caller must call Close when done.
func NewGistApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*GistApp, error) {
	op := NewOperation(operation, time.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	chatLogger := &slogAdapter{l: logger}

	kv, err := storage.NewStoreFromConfig(ctx, cfg.Storage)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	sealed, err := sealStore(kv, cfg.Encryption, opts.Passphrase)
	if err != nil {
		kv.Close()
		logFile.Close()
		return nil, err
	}
	kv = sealed

	area, err := staging.NewAreaFromConfig(cfg.Staging, chat.UUIDGenerator{})
	if err != nil {
		kv.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	gen := opts.Generator
	if gen == nil {
		client, err := llm.NewClientFromConfig(cfg.LLM)
		if err != nil {
			kv.Close()
			logFile.Close()
			return nil, fmt.Errorf("creating llm client: %w", err)
		}
		gen = client
	}

	clock := chat.RealClock{}
	idgen := chat.UUIDGenerator{}
	conversations := chat.NewConversationStore(kv, clock, idgen, chatLogger)
	identities := chat.NewIdentityStore(kv, idgen, chatLogger)
	keys := chat.NewKeyResolver(ConfiguredAPIKey(opts.LinkedAPIKey, cfg), kv, chatLogger)
	encoder := chat.NewEncoder(area, chatLogger)
	svc := chat.NewService(conversations, identities, keys, encoder, gen, chatLogger, clock, idgen)

	logger.Debug("operation started", "storage", cfg.Storage.Type, "transport", cfg.LLM.Transport)

	return &GistApp{
		cfg:           cfg,
		kv:            kv,
		staging:       area,
		conversations: conversations,
		identities:    identities,
		keys:          keys,
		service:       svc,
		logger:        logger,
		op:            op,
		logFile:       logFile,
	}, nil
}

// sealStore wraps kv in a SealedStore unless encryption is disabled.
func sealStore(kv chat.KeyValueStore, cfg config.EncryptionConfig, passphrase func() (string, error)) (chat.KeyValueStore, error) {
	if cfg.Type == "" || cfg.Type == "none" {
		return kv, nil
	}

	sealer, err := encryption.NewSealerFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}
	if !sealer.IsConfigured() {
		return nil, ErrEncryptionNotSetUp
	}

	var pass string
	if passphrase != nil {
		if pass, err = passphrase(); err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
	}
	if err := sealer.Unlock(pass); err != nil {
		return nil, fmt.Errorf("unlocking storage: %w", err)
	}
	return storage.NewSealedStore(kv, sealer), nil
}

// SetupEncryption generates the key pair for the configured sealer.
func SetupEncryption(cfg config.EncryptionConfig, passphrase string) error {
	sealer, err := encryption.NewSealerFromConfig(cfg)
	if err != nil {
		return err
	}
	if sealer.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	if err := sealer.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}

// fail marks the operation as failed and passes err through.
func (a *GistApp) fail(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// Send stages the given files, sends message to the active conversation (a
// new one if none is active) and returns the outcome. Staged content is
// released afterwards whether or not the send succeeded.
func (a *GistApp) Send(ctx context.Context, message string, files []string) (*chat.SendResult, error) {
	if strings.TrimSpace(message) == "" && len(files) == 0 {
		return nil, a.fail(fmt.Errorf("nothing to send"))
	}

	var atts []chat.Attachment
	defer func() {
		for _, att := range atts {
			if err := a.staging.Release(att.Ref); err != nil {
				a.logger.Warn("releasing staged attachment failed", "ref", att.Ref, "error", err)
			}
		}
	}()

	for _, f := range files {
		att, err := a.staging.Stage(f)
		if err != nil {
			return nil, a.fail(fmt.Errorf("attaching %s: %w", f, err))
		}
		a.logger.Info("attachment staged", "name", att.Name, "size", att.Size, "ref", att.Ref)
		atts = append(atts, *att)
	}

	var conversationID string
	if active := a.conversations.Active(); active != nil {
		conversationID = active.ID
	}

	res, err := a.service.Send(ctx, conversationID, message, atts)
	if err != nil {
		return nil, a.fail(fmt.Errorf("sending message: %w", err))
	}
	return res, nil
}

// NewConversation starts an empty conversation and makes it active.
func (a *GistApp) NewConversation() (*chat.Conversation, error) {
	conv, err := a.conversations.Create()
	return conv, a.fail(err)
}

// Conversations returns all conversations, newest first.
func (a *GistApp) Conversations() []*chat.Conversation {
	return a.conversations.List()
}

// ActiveConversation returns the active conversation, or nil.
func (a *GistApp) ActiveConversation() *chat.Conversation {
	return a.conversations.Active()
}

// Conversation returns the conversation with the given id, or the active one
// when id is empty.
func (a *GistApp) Conversation(id string) (*chat.Conversation, error) {
	var conv *chat.Conversation
	if id == "" {
		conv = a.conversations.Active()
	} else {
		conv = a.conversations.Get(id)
	}
	if conv == nil {
		if id == "" {
			return nil, a.fail(fmt.Errorf("no active conversation: %w", chat.ErrConversationNotFound))
		}
		return nil, a.fail(fmt.Errorf("%s: %w", id, chat.ErrConversationNotFound))
	}
	return conv, nil
}

// UseConversation makes an existing conversation active.
func (a *GistApp) UseConversation(id string) error {
	if a.conversations.Get(id) == nil {
		return a.fail(fmt.Errorf("%s: %w", id, chat.ErrConversationNotFound))
	}
	return a.fail(a.conversations.SetActive(id))
}

// DeleteConversation removes a conversation.
func (a *GistApp) DeleteConversation(id string) error {
	if a.conversations.Get(id) == nil {
		return a.fail(fmt.Errorf("%s: %w", id, chat.ErrConversationNotFound))
	}
	return a.fail(a.conversations.Delete(id))
}

// ClearConversations removes all conversations.
func (a *GistApp) ClearConversations() error {
	return a.fail(a.conversations.Clear())
}

// Login records the local identity.
func (a *GistApp) Login(email, name string) (*chat.Identity, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(name) == "" {
		return nil, a.fail(fmt.Errorf("email and name are required"))
	}
	id, err := a.identities.Login(email, name)
	return id, a.fail(err)
}

// Logout removes the local identity.
func (a *GistApp) Logout() error {
	return a.fail(a.identities.Logout())
}

// CurrentIdentity returns the local identity, or nil.
func (a *GistApp) CurrentIdentity() *chat.Identity {
	return a.identities.Current()
}

// SaveAPIKey stores a user-entered API key.
func (a *GistApp) SaveAPIKey(key string) error {
	return a.fail(a.keys.Save(key))
}

// ClearAPIKey removes the stored API key.
func (a *GistApp) ClearAPIKey() error {
	return a.fail(a.keys.Clear())
}

// APIKeySource reports where the API key in effect comes from.
func (a *GistApp) APIKeySource() chat.KeySource {
	return a.keys.Source()
}

// Close releases storage and the log file.
func (a *GistApp) Close() error {
	var firstErr error
	if err := a.kv.Close(); err != nil {
		firstErr = fmt.Errorf("closing storage: %w", err)
	}

	a.logger.Debug("operation finished", "status", a.op.Status)
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
