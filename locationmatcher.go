// Package locationmatcher matches user-submitted photos against a fixed
// catalogue of reference locations using a hosted vision-language model.
//
// A quest deployment carries a small, ordered catalogue of locations, each
// with a free-text description of its fixed visual features. One match is one
// inference round trip: the whole catalogue is embedded in the system
// instruction, the photo is the user turn, and the model answers with a
// schema-constrained {location_index, confidence} pair. Index -1 means no
// confident match; the matching policy is deliberately strict so that nearby
// or merely similar scenes are rejected.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		locationmatcher "github.com/questhunt/location-matcher"
//		"github.com/questhunt/location-matcher/pkg/catalogue"
//		"github.com/questhunt/location-matcher/pkg/openai"
//	)
//
//	func main() {
//		// API key comes from the OPENAI_API_KEY environment variable.
//		vc, err := openai.NewClient(openai.Config{})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		m := locationmatcher.New(catalogue.Default(), vc, locationmatcher.Options{
//			Model: "gpt-4o-mini",
//		})
//
//		result, err := m.MatchSource(context.Background(), "photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Println(result)
//	}
//
// The package consists of four main components:
//
// 1. Catalogue (pkg/catalogue): the immutable ordered location list
// 2. Matcher (pkg/matcher): payload validation, prompt building, contract checks
// 3. Provider clients (pkg/openai, pkg/ollama): one round trip per match
// 4. Preprocess (pkg/preprocess): decode and downscale before sending
//
// A Matcher is stateless across calls and safe for concurrent use; the HTTP
// boundary in internal/server runs one Match per incoming request with no
// shared mutable state.
package locationmatcher

import (
	"context"
	"fmt"

	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/matcher"
	"github.com/questhunt/location-matcher/pkg/preprocess"
	"github.com/questhunt/location-matcher/pkg/types"
)

// Version of the location matcher library
const Version = "1.0.0"

// Options configures the high-level matcher.
type Options struct {
	// Model is the provider model identifier.
	Model string

	// Temperature and MaxOutputTokens tune decoding; zero values select the
	// near-deterministic defaults from pkg/matcher.
	Temperature     float64
	MaxOutputTokens int

	// MaxPayloadBytes caps accepted uploads; zero selects 10 MiB.
	MaxPayloadBytes int

	// SendFormat, SendMaxDim and SendQuality control re-encoding before the
	// provider call. SendMaxDim 0 disables preprocessing and sends the
	// payload as received.
	SendFormat  string
	SendMaxDim  int
	SendQuality int
}

// Matcher is the high-level entry point combining payload validation,
// preprocessing and the single-shot classification call.
type Matcher struct {
	core *matcher.Matcher
	proc *preprocess.Processor
	opts Options
}

// New creates a Matcher for the given catalogue and provider client.
func New(cat *catalogue.Catalogue, vc client.VisionClient, opts Options) *Matcher {
	if opts.SendFormat == "" {
		opts.SendFormat = preprocess.DefaultSendFormat
	}
	if opts.SendQuality == 0 {
		opts.SendQuality = preprocess.DefaultSendQuality
	}
	return &Matcher{
		core: matcher.New(cat, vc, matcher.Options{
			Model:           opts.Model,
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxOutputTokens,
			MaxPayloadBytes: opts.MaxPayloadBytes,
		}),
		proc: preprocess.NewProcessor(),
		opts: opts,
	}
}

// Catalogue returns the catalogue this matcher answers against.
func (m *Matcher) Catalogue() *catalogue.Catalogue {
	return m.core.Catalogue()
}

// Match classifies one image payload against the catalogue. The original
// payload is validated first, so nothing invalid ever costs an inference
// call; when preprocessing is enabled the model receives the downscaled
// re-encoding instead of the raw upload.
func (m *Matcher) Match(ctx context.Context, image []byte) (types.MatchResult, error) {
	if err := m.core.ValidatePayload(image); err != nil {
		return types.MatchResult{}, err
	}

	prepared := image
	if m.opts.SendMaxDim > 0 {
		var err error
		prepared, err = m.proc.PrepareForModel(image, m.opts.SendFormat, m.opts.SendMaxDim, m.opts.SendQuality)
		if err != nil {
			return types.MatchResult{}, fmt.Errorf("undecodable image payload: %v: %w", err, matcher.ErrPayloadInvalid)
		}
	}

	return m.core.Match(ctx, prepared)
}

// MatchSource loads an image from a file path or HTTP(S) URL and matches it.
func (m *Matcher) MatchSource(ctx context.Context, source string) (types.MatchResult, error) {
	data, err := m.proc.LoadBytes(source)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to load image: %w", err)
	}
	return m.Match(ctx, data)
}

// GetVersion returns the library version.
func GetVersion() string {
	return Version
}
