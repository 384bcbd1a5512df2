package llm

import "strings"

// Preamble is sent as a leading user turn on the first request of a conversation.
const Preamble = "You are LegalGist Assistant, an AI that helps users understand legal documents. " +
	"When PDFs are provided, analyze them and provide insights. Be helpful, concise, and accurate. " +
	"Your name is LegalGist Assistant."

// Fixed generation parameters sent with every request.
const (
	Temperature     = 0.7
	MaxOutputTokens = 2048
)

const mimeTypePDF = "application/pdf"

// HistoryMessage is a prior message of the conversation.
type HistoryMessage struct {
	Role    string // "user", "assistant" or "system"
	Content string
}

// Attachment is an attachment of the new turn. Data is a data URL.
type Attachment struct {
	MimeType string
	Data     string
}

// ProviderRole maps a message role to a provider role: assistant messages
// become "model", everything else (system included) becomes "user".
func ProviderRole(role string) string {
	if role == "assistant" {
		return RoleModel
	}
	return RoleUser
}

// BuildRequest assembles the request for a new user turn.
//
// History is mapped in order, the new text becomes the final user turn and
// each PDF attachment with content adds an inline part to that turn. When
// history is empty the persona preamble is prepended as a user turn.
func BuildRequest(history []HistoryMessage, text string, attachments []Attachment) *Request {
	contents := make([]Content, 0, len(history)+2)

	if len(history) == 0 {
		contents = append(contents, Content{
			Role:  RoleUser,
			Parts: []Part{{Text: Preamble}},
		})
	}

	for _, m := range history {
		contents = append(contents, Content{
			Role:  ProviderRole(m.Role),
			Parts: []Part{{Text: m.Content}},
		})
	}

	final := Content{
		Role:  RoleUser,
		Parts: []Part{{Text: text}},
	}
	for _, a := range attachments {
		if a.MimeType != mimeTypePDF || a.Data == "" {
			continue
		}
		final.Parts = append(final.Parts, Part{
			InlineData: &InlineData{MimeType: mimeTypePDF, Data: Payload(a.Data)},
		})
	}
	contents = append(contents, final)

	return &Request{
		Contents: contents,
		GenerationConfig: &GenerationConfig{
			Temperature:     Temperature,
			MaxOutputTokens: MaxOutputTokens,
		},
	}
}

// Payload strips the "data:<mime>;base64," prefix of a data URL.
// A value without a prefix is returned unchanged.
func Payload(dataURL string) string {
	if _, payload, ok := strings.Cut(dataURL, ","); ok {
		return payload
	}
	return dataURL
}
