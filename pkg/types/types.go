package types

import "fmt"

// NoMatch is the reserved location index meaning the submitted image did not
// match any catalogue entry. It is the only valid out-of-range value.
const NoMatch = -1

// Confidence is a coarse three-level estimate of match certainty.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the three allowed confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Location is one reference entry of the quest catalogue. Its position in the
// catalogue is its stable identifier; entries are immutable at runtime.
type Location struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Images      []string `json:"images" yaml:"images"`
}

// MatchResult is the structured answer of one matching call.
//
// LocationIndex is a valid index into the catalogue used to build the prompt,
// or NoMatch. Confidence is always present but only meaningful when
// LocationIndex != NoMatch.
type MatchResult struct {
	LocationIndex int        `json:"location_index"`
	Confidence    Confidence `json:"confidence"`
}

// Matched reports whether the result identifies a catalogue location.
func (r MatchResult) Matched() bool {
	return r.LocationIndex != NoMatch
}

func (r MatchResult) String() string {
	if !r.Matched() {
		return "no match"
	}
	return fmt.Sprintf("location %d (%s confidence)", r.LocationIndex, r.Confidence)
}
