// Package llm builds Gemini generateContent requests and sends them.
package llm

import (
	"errors"
	"fmt"
)

// Provider roles. The provider only distinguishes user turns from model turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Request is the generateContent request body.
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one role-tagged turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is either text or inline binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64 content with its media type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerationConfig holds sampling parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Response is the subset of the generateContent response that is read.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one completion.
type Candidate struct {
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

var (
	ErrNoCandidates = errors.New("response has no candidates")
	ErrNoText       = errors.New("first candidate has no text")
)

// FirstText returns the first text part of the first candidate.
func (r *Response) FirstText() (string, error) {
	if r == nil || len(r.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", fmt.Errorf("invalid response format: %w", ErrNoText)
	}
	return parts[0].Text, nil
}
