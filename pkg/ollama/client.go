// Package ollama implements the vision client against an Ollama daemon.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/types"
)

// matchResultSchema constrains decoding to the two-field match result. Ollama
// enforces it server-side; the response is still validated after parsing.
var matchResultSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"location_index": {"type": "integer"},
		"confidence": {"type": "string", "enum": ["high", "medium", "low"]}
	},
	"required": ["location_index", "confidence"]
}`)

// DefaultTimeout bounds a single inference round trip when the caller's
// context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Client wraps the Ollama API client.
type Client struct {
	client  *api.Client
	timeout time.Duration
}

// NewClient creates a new Ollama client. A zero timeout selects DefaultTimeout.
func NewClient(ollamaURL string, timeout time.Duration) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Base URL only; the SDK appends paths like /api/chat itself.
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client:  api.NewClient(baseURL, http.DefaultClient),
		timeout: timeout,
	}, nil
}

// MatchLocation performs one schema-constrained chat call with the catalogue
// prompt as the system instruction and the image as the user turn.
func (c *Client) MatchLocation(ctx context.Context, system string, image []byte, opts client.MatchOptions) (*types.MatchResult, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	streamFalse := false
	req := &api.ChatRequest{
		Model: opts.Model,
		Messages: []api.Message{
			{
				Role:    "system",
				Content: system,
			},
			{
				Role:    "user",
				Content: "USER'S IMAGE TO ANALYZE:",
				Images:  []api.ImageData{api.ImageData(image)},
			},
		},
		Stream: &streamFalse,
		Format: matchResultSchema,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxOutputTokens,
		},
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama: %w", client.ErrContract)
	}

	return parseMatchResult(responseContent)
}

// Describe performs a plain chat call and returns the model's free-text answer.
func (c *Client) Describe(ctx context.Context, model, prompt string, image []byte) (string, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	streamFalse := false
	req := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(image)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", classify(err)
	}
	if responseContent == "" {
		return "", fmt.Errorf("empty response from ollama: %w", client.ErrContract)
	}

	return responseContent, nil
}

// withDeadline applies the client timeout when the caller supplied none, so an
// unresponsive daemon cannot block a request handler indefinitely.
func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("ollama chat: %w", client.ErrTimeout)
	}
	return fmt.Errorf("ollama chat error: %v: %w", err, client.ErrUnavailable)
}
