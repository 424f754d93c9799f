package model

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Severity is the ordered damage classification reported by the assessor.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityCritical Severity = "Critical"
)

// severityOrder is ascending, index = rank.
var severityOrder = []Severity{SeverityMinor, SeverityModerate, SeveritySevere, SeverityCritical}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minor":
		return SeverityMinor, nil
	case "moderate":
		return SeverityModerate, nil
	case "severe":
		return SeveritySevere, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityMinor, fmt.Errorf("unknown severity: %s", s)
	}
}

// Rank returns the position of the severity on the ordered scale,
// or -1 for a value the scale doesn't know.
func (s Severity) Rank() int {
	return slices.Index(severityOrder, s)
}

// AtLeast reports whether s is as severe as other or worse.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}
