// Package openai implements the vision client against an OpenAI-compatible
// chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/types"
)

// DefaultTimeout bounds a single inference round trip when the caller's
// context carries no deadline.
const DefaultTimeout = 30 * time.Second

// Client talks to a hosted OpenAI-compatible chat completions API.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// Config configures the OpenAI-compatible client. The API key is read from
// the environment variable named by APIKeyEnv; it never appears in config
// files or logs.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient creates a new client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	t := cfg.Timeout
	if t <= 0 {
		t = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     key,
		timeout:    t,
		httpClient: &http.Client{Timeout: t},
	}, nil
}

// Message is an OpenAI-compatible chat message.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string or []ContentPart
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ResponseFormat requests schema-constrained decoding.
type ResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *JSONSchema `json:"json_schema,omitempty"`
}

type JSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// matchResultSchema is the structured output contract: exactly two short
// fields, nothing else. Strict mode requires additionalProperties: false.
var matchResultSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"location_index": {
			"type": "integer",
			"description": "Index of the matched location, or -1 if no match"
		},
		"confidence": {
			"type": "string",
			"enum": ["high", "medium", "low"],
			"description": "Confidence level of the match"
		}
	},
	"required": ["location_index", "confidence"],
	"additionalProperties": false
}`)

// MatchLocation performs one schema-constrained chat completion with the
// catalogue prompt as the system instruction and the image as the user turn.
func (c *Client) MatchLocation(ctx context.Context, system string, image []byte, opts client.MatchOptions) (*types.MatchResult, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	req := ChatCompletionRequest{
		Model: opts.Model,
		Messages: []Message{
			{
				Role:    "system",
				Content: system,
			},
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: "USER'S IMAGE TO ANALYZE:"},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL(image), Detail: "low"}},
				},
			},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchema{
				Name:   "location_match_result",
				Strict: true,
				Schema: matchResultSchema,
			},
		},
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	// Pointer fields distinguish absent from zero: an omitted location_index
	// must not decode as index 0, which is a real catalogue entry.
	var wire struct {
		LocationIndex *int              `json:"location_index"`
		Confidence    *types.Confidence `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, fmt.Errorf("failed to parse model response %q: %w", truncate(text, 200), client.ErrContract)
	}
	if wire.LocationIndex == nil {
		return nil, fmt.Errorf("missing location_index in model response %q: %w", truncate(text, 200), client.ErrContract)
	}
	if wire.Confidence == nil || !wire.Confidence.Valid() {
		return nil, fmt.Errorf("missing or invalid confidence in model response %q: %w", truncate(text, 200), client.ErrContract)
	}
	return &types.MatchResult{LocationIndex: *wire.LocationIndex, Confidence: *wire.Confidence}, nil
}

// Describe performs a plain chat completion and returns the model's free-text
// answer.
func (c *Client) Describe(ctx context.Context, model, prompt string, image []byte) (string, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	req := ChatCompletionRequest{
		Model: model,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL(image)}},
				},
			},
		},
	}

	return c.complete(ctx, req)
}

// complete sends one chat completion request and extracts the text content of
// the first choice.
func (c *Client) complete(ctx context.Context, payload ChatCompletionRequest) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("chat completion: %w", client.ErrTimeout)
		}
		return "", fmt.Errorf("failed to send request: %v: %w", err, client.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v: %w", err, client.ErrUnavailable)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), client.ErrUnavailable)
	}

	var parsed ChatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", client.ErrContract)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", client.ErrContract)
	}

	// Content may be a plain string or an array of parts.
	switch content := parsed.Choices[0].Message.Content.(type) {
	case string:
		if content != "" {
			return content, nil
		}
	case []interface{}:
		for _, item := range content {
			if partMap, ok := item.(map[string]interface{}); ok {
				if text, ok := partMap["text"].(string); ok && text != "" {
					return text, nil
				}
			}
		}
	}

	return "", fmt.Errorf("no text content in response: %w", client.ErrContract)
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// dataURL encodes image bytes as a data URL with a sniffed media type.
func dataURL(image []byte) string {
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
