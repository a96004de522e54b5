package ollama

import (
	"errors"
	"testing"

	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/types"
)

func TestParseMatchResult(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantIndex  int
		wantConf   types.Confidence
		wantErr    bool
	}{
		{
			name:      "clean JSON",
			raw:       `{"location_index": 3, "confidence": "high"}`,
			wantIndex: 3,
			wantConf:  types.ConfidenceHigh,
		},
		{
			name:      "no match",
			raw:       `{"location_index": -1, "confidence": "low"}`,
			wantIndex: -1,
			wantConf:  types.ConfidenceLow,
		},
		{
			name:      "fenced JSON",
			raw:       "```json\n{\"location_index\": 2, \"confidence\": \"medium\"}\n```",
			wantIndex: 2,
			wantConf:  types.ConfidenceMedium,
		},
		{
			name:      "trailing comma",
			raw:       `{"location_index": 0, "confidence": "high",}`,
			wantIndex: 0,
			wantConf:  types.ConfidenceHigh,
		},
		{
			name:      "surrounding prose",
			raw:       `Here is the result: {"location_index": 5, "confidence": "low"} as requested.`,
			wantIndex: 5,
			wantConf:  types.ConfidenceLow,
		},
		{
			name:    "not JSON at all",
			raw:     "I could not find a match for this image.",
			wantErr: true,
		},
		{
			name:    "invalid confidence",
			raw:     `{"location_index": 1, "confidence": "very high"}`,
			wantErr: true,
		},
		{
			name:    "missing confidence",
			raw:     `{"location_index": 1}`,
			wantErr: true,
		},
		{
			// An absent index must not decode as entry 0.
			name:    "missing location index",
			raw:     `{"confidence": "high"}`,
			wantErr: true,
		},
		{
			name:    "non-integer index",
			raw:     `{"location_index": "three", "confidence": "high"}`,
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := parseMatchResult(test.raw)
			if test.wantErr {
				if !errors.Is(err, client.ErrContract) {
					t.Errorf("Expected ErrContract, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMatchResult failed: %v", err)
			}
			if result.LocationIndex != test.wantIndex {
				t.Errorf("Expected index %d, got %d", test.wantIndex, result.LocationIndex)
			}
			if result.Confidence != test.wantConf {
				t.Errorf("Expected confidence %q, got %q", test.wantConf, result.Confidence)
			}
		})
	}
}

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			input:    `{"a": 1, /* comment */ "b": 2}`,
			expected: `{"a": 1,  "b": 2}`,
		},
		{
			input:    "{\"a\": 1,\n}",
			expected: "{\"a\": 1\n}",
		},
		{
			input:    `   {"a": 1}   `,
			expected: `{"a": 1}`,
		},
	}

	for _, test := range tests {
		result := sanitizeModelJSON(test.input)
		if result != test.expected {
			t.Errorf("sanitizeModelJSON(%q) = %q, expected %q",
				test.input, result, test.expected)
		}
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:11434", 0)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v, got %v", DefaultTimeout, c.timeout)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := NewClient("://bad", 0); err == nil {
		t.Error("NewClient should reject an unparseable URL")
	}
}
