package llm

import (
	"context"
	"fmt"

	"legalgist/internal/config"
)

// Client sends a built request with the given API key and returns the reply text.
type Client interface {
	Generate(ctx context.Context, apiKey string, req *Request) (string, error)
}

// NewClientFromConfig creates a Client based on the llm transport setting.
func NewClientFromConfig(cfg config.LLMConfig) (Client, error) {
	switch cfg.Transport {
	case "", "rest":
		return NewRESTClient(cfg.BaseURL, cfg.Model), nil
	case "genai":
		return NewGenAIClient(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm transport: %s", cfg.Transport)
	}
}
