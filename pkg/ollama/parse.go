package ollama

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/types"
)

// parseMatchResult parses the JSON response from the vision model. The Format
// field should guarantee clean JSON, but smaller models occasionally wrap it
// in fences or comments, so the payload is sanitized first. Anything that
// still fails the schema is a contract violation, never a fabricated result.
func parseMatchResult(raw string) (*types.MatchResult, error) {
	sanitized := sanitizeModelJSON(raw)

	if !strings.HasPrefix(sanitized, "{") {
		return nil, fmt.Errorf("non-JSON model response %q: %w", truncate(raw, 200), client.ErrContract)
	}

	// Pointer fields distinguish absent from zero: an omitted location_index
	// must not decode as index 0, which is a real catalogue entry.
	var wire struct {
		LocationIndex *int              `json:"location_index"`
		Confidence    *types.Confidence `json:"confidence"`
	}
	dec := json.NewDecoder(strings.NewReader(sanitized))
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to parse model response %q: %w", truncate(raw, 200), client.ErrContract)
	}

	if wire.LocationIndex == nil {
		return nil, fmt.Errorf("missing location_index in model response %q: %w", truncate(raw, 200), client.ErrContract)
	}
	if wire.Confidence == nil || !wire.Confidence.Valid() {
		return nil, fmt.Errorf("missing or invalid confidence in model response %q: %w", truncate(raw, 200), client.ErrContract)
	}

	return &types.MatchResult{LocationIndex: *wire.LocationIndex, Confidence: *wire.Confidence}, nil
}

// sanitizeModelJSON removes code fences, comments, and trailing commas from a
// JSON response.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	// Remove /* ... */ block comments
	reBlock := regexp.MustCompile(`(?s)/\*.*?\*/`)
	raw = reBlock.ReplaceAllString(raw, "")

	// Remove // line/inline comments
	reLine := regexp.MustCompile(`(?m)^\s*//.*$`)
	raw = reLine.ReplaceAllString(raw, "")

	// Remove trailing commas before } or ]
	reTrailing := regexp.MustCompile(`,(\s*[}\]])`)
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
