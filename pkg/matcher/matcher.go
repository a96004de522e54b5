// Package matcher decides which catalogue location, if any, a submitted photo
// depicts. One match is one round trip to a vision-language model: the full
// catalogue is embedded textually in the system instruction (catalogues are
// small, so retrieval-based narrowing would only add moving parts) and the
// answer is constrained to a two-field schema.
//
// A Matcher holds no cross-request state; concurrent calls share the
// read-only catalogue and the provider client without coordination.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/types"
)

// ErrPayloadInvalid indicates the submitted payload was rejected before any
// provider call: missing, empty, not a recognized image format, or oversize.
var ErrPayloadInvalid = errors.New("payload invalid")

// MaxPayloadBytes is the default upload ceiling.
const MaxPayloadBytes = 10 << 20 // 10 MiB

// Defaults for the inference call. The answer is always two short fields, so
// decoding is pinned near-deterministic with a small output budget.
const (
	DefaultTemperature     = 0.1
	DefaultMaxOutputTokens = 100
)

// allowedMIMETypes is the upload allow-list, keyed by sniffed content type.
var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Options configures a Matcher.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	MaxPayloadBytes int
}

// Matcher matches user photos against a fixed location catalogue.
type Matcher struct {
	cat    *catalogue.Catalogue
	client client.VisionClient
	system string
	opts   Options
}

// New creates a Matcher for the given catalogue and provider client. The
// system prompt is rendered once here; the catalogue is immutable, so every
// request reuses it.
func New(cat *catalogue.Catalogue, vc client.VisionClient, opts Options) *Matcher {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxOutputTokens == 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.MaxPayloadBytes == 0 {
		opts.MaxPayloadBytes = MaxPayloadBytes
	}
	return &Matcher{
		cat:    cat,
		client: vc,
		system: BuildPrompt(cat),
		opts:   opts,
	}
}

// Catalogue returns the catalogue this matcher answers against.
func (m *Matcher) Catalogue() *catalogue.Catalogue {
	return m.cat
}

// Match classifies one image against the catalogue.
//
// The payload is validated before any outbound call; an invalid payload never
// costs an inference request. A response whose index is neither types.NoMatch
// nor within the catalogue is a contract violation and is returned as an
// error wrapping client.ErrContract, never coerced to "no match" — silently
// downgrading could mask a catalogue/provider version mismatch.
func (m *Matcher) Match(ctx context.Context, image []byte) (types.MatchResult, error) {
	if err := m.ValidatePayload(image); err != nil {
		return types.MatchResult{}, err
	}

	result, err := m.client.MatchLocation(ctx, m.system, image, client.MatchOptions{
		Model:           m.opts.Model,
		Temperature:     m.opts.Temperature,
		MaxOutputTokens: m.opts.MaxOutputTokens,
	})
	if err != nil {
		return types.MatchResult{}, err
	}

	if !m.cat.ValidIndex(result.LocationIndex) {
		return types.MatchResult{}, fmt.Errorf(
			"location index %d out of range for catalogue of size %d: %w",
			result.LocationIndex, m.cat.Size(), client.ErrContract)
	}

	return *result, nil
}

// ValidatePayload rejects payloads that must not reach the provider.
func (m *Matcher) ValidatePayload(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("empty image payload: %w", ErrPayloadInvalid)
	}
	if len(image) > m.opts.MaxPayloadBytes {
		return fmt.Errorf("image payload of %d bytes exceeds limit of %d: %w",
			len(image), m.opts.MaxPayloadBytes, ErrPayloadInvalid)
	}
	mimeType := http.DetectContentType(image)
	if !allowedMIMETypes[mimeType] {
		return fmt.Errorf("unsupported content type %s (allowed: JPEG, PNG, WebP): %w",
			mimeType, ErrPayloadInvalid)
	}
	return nil
}
