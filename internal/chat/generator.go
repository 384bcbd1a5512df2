package chat

import (
	"context"

	"legalgist/internal/llm"
)

// Generator sends a built request to the model and returns the reply text.
// Any failure (transport, status, malformed response) is a single error.
type Generator interface {
	Generate(ctx context.Context, apiKey string, req *llm.Request) (string, error)
}
