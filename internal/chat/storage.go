package chat

// Fixed storage keys. Each key holds one opaque serialized value.
const (
	ConversationsKey = "chat-conversations"
	IdentityKey      = "legal-gist-user"
	APIKeyKey        = "gemini-api-key"
)

// KeyValueStore is the local storage substrate every piece of durable state lives in.
// A single Set is all-or-nothing from the caller's perspective.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns (nil, false, nil) if nothing is stored under key.
	Get(key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}
