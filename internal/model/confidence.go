package model

import (
	"fmt"
	"strings"
)

// Confidence is the heuristic trust tier of an employee record.
// The zero value is ConfidenceLow.
type Confidence int

const (
	// ConfidenceLow marks records that need manual verification.
	ConfidenceLow Confidence = iota

	// ConfidenceMedium marks records worth verifying before use.
	ConfidenceMedium

	// ConfidenceHigh marks the most reliable records.
	ConfidenceHigh
)

// Confidences lists every tier from most to least trusted.
var Confidences = []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}

// String returns the lower-case name used in JSON files.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// Label returns the capitalized name shown in spreadsheets ("High").
func (c Confidence) Label() string {
	s := c.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

// Rank returns the sort position: high first, then medium, then low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// ParseConfidence converts a tier name to a Confidence.
// Matching ignores case and surrounding space; anything unknown is low.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ConfidenceFromScore maps a heuristic score to a tier using the given
// inclusive thresholds.
func ConfidenceFromScore(score, high, medium int) Confidence {
	switch {
	case score >= high:
		return ConfidenceHigh
	case score >= medium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Unknown values decode to ConfidenceLow instead of failing.
func (c *Confidence) UnmarshalText(text []byte) error {
	if c == nil {
		return fmt.Errorf("model: UnmarshalText on nil *Confidence")
	}
	*c = ParseConfidence(string(text))
	return nil
}
