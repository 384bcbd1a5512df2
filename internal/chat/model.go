package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Attachment is a named binary object carried by a message.
//
// Ref is the transient locator handed out by the staging area. It is only valid
// until released and is never serialized. Data is the durable form of the
// content: a self-describing data URL ("data:<mime>;base64,<payload>").
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"type"`
	Size     int64  `json:"size"`
	Ref      string `json:"-"`
	Data     string `json:"fileData,omitempty"`
}

// HasPayload reports whether the attachment carries durable content.
func (a Attachment) HasPayload() bool {
	return a.Data != ""
}

// Message is one turn of a conversation. Messages are never edited once appended.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	CreatedAt   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	AuthorName  string       `json:"userName,omitempty"`
}

// Conversation is an ordered, titled thread of messages.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// state is the whole persisted document stored under ConversationsKey.
// Conversations are ordered newest first.
type state struct {
	Conversations        []*Conversation `json:"conversations"`
	ActiveConversationID string          `json:"activeConversationId,omitempty"`
}

// find returns the conversation with the given id, or nil.
func (s *state) find(id string) *Conversation {
	for _, c := range s.Conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Identity is the locally signed-in user. There are no credentials; it only
// supplies a display name for authored messages.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
