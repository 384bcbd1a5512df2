package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

// GenAIClient sends requests through the Google Gen AI SDK instead of raw REST.
// A client is created per call because the API key is resolved per call.
type GenAIClient struct {
	model string
}

// NewGenAIClient creates a GenAIClient for the given model.
func NewGenAIClient(model string) *GenAIClient {
	if model == "" {
		model = DefaultModel
	}
	return &GenAIClient{model: model}
}

// Generate converts req to SDK types, calls GenerateContent and returns the
// first text part of the first candidate.
func (c *GenAIClient) Generate(ctx context.Context, apiKey string, req *Request) (string, error) {
	contents, err := toGenAIContents(req.Contents)
	if err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("creating genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, toGenAIConfig(req.GenerationConfig))
	if err != nil {
		return "", fmt.Errorf("calling generateContent: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoCandidates
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0] == nil || parts[0].Text == "" {
		return "", fmt.Errorf("invalid response format: %w", ErrNoText)
	}
	return parts[0].Text, nil
}

// toGenAIContents converts wire turns to SDK turns. Inline payloads are
// decoded from base64 since the SDK carries raw bytes.
func toGenAIContents(in []Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(in))
	for i, c := range in {
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p.InlineData != nil {
				data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("decoding inline data of turn %d: %w", i, err)
				}
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: p.InlineData.MimeType, Data: data},
				})
				continue
			}
			parts = append(parts, &genai.Part{Text: p.Text})
		}
		out = append(out, &genai.Content{Role: c.Role, Parts: parts})
	}
	return out, nil
}

func toGenAIConfig(gc *GenerationConfig) *genai.GenerateContentConfig {
	if gc == nil {
		return nil
	}
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(gc.MaxOutputTokens),
	}
	if gc.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(gc.Temperature))
	}
	if gc.TopP != 0 {
		cfg.TopP = genai.Ptr(float32(gc.TopP))
	}
	if gc.TopK != 0 {
		cfg.TopK = genai.Ptr(float32(gc.TopK))
	}
	return cfg
}
