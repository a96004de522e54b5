package client

import (
	"context"
	"errors"

	"github.com/questhunt/location-matcher/pkg/types"
)

// Upstream failure kinds. Implementations wrap these sentinels so callers can
// classify failures without knowing which backend is in use.
var (
	// ErrUnavailable indicates a network or provider-side failure before a
	// usable response was produced. The call had no side effects and is safe
	// to retry at the caller's discretion.
	ErrUnavailable = errors.New("inference provider unavailable")

	// ErrContract indicates the provider responded but the payload does not
	// satisfy the structured output schema. This is never coerced to a
	// "no match" result.
	ErrContract = errors.New("inference response violates output contract")

	// ErrTimeout indicates the provider did not respond within the deadline.
	ErrTimeout = errors.New("inference provider timed out")
)

// MatchOptions carries decoding parameters for a structured match call.
type MatchOptions struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// VisionClient is a hosted multimodal inference provider. Implementations are
// stateless and safe for concurrent use; each call is one round trip.
type VisionClient interface {
	// MatchLocation sends the catalogue prompt as a system instruction and
	// the image as the user turn, requesting a response constrained to the
	// match result schema. The result is schema-valid but not yet checked
	// against the catalogue size.
	MatchLocation(ctx context.Context, system string, image []byte, opts MatchOptions) (*types.MatchResult, error)

	// Describe sends a free-text prompt with an image and returns the
	// model's natural-language answer.
	Describe(ctx context.Context, model, prompt string, image []byte) (string, error)
}
