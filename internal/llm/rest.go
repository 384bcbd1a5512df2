package llm

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Gemini REST endpoint root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// RESTClient posts requests to the generateContent endpoint, passing the API
// key as a query parameter. It applies no retries and no timeout of its own.
type RESTClient struct {
	httpClient *resty.Client
	model      string
}

// apiError is the error body returned by the provider.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewRESTClient creates a resty-backed client for the given endpoint root and model.
func NewRESTClient(baseURL, model string) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &RESTClient{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
		model: model,
	}
}

// Generate sends req and returns the first text part of the first candidate.
// Transport failures, non-success statuses and responses without text are all
// returned as errors.
func (c *RESTClient) Generate(ctx context.Context, apiKey string, req *Request) (string, error) {
	var result Response
	var apiErr apiError

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/models/" + url.PathEscape(c.model) + ":generateContent")
	if err != nil {
		return "", fmt.Errorf("calling generateContent: %w", err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return "", fmt.Errorf("API error: %d %s", resp.StatusCode(), msg)
	}

	return result.FirstText()
}
