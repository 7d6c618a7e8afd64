package contract

import (
	"fmt"
	"strings"
)

// Severity ranks how serious a compliance issue is.
type Severity string

const (
	// SeverityHigh marks issues that likely make a clause unenforceable or unlawful.
	SeverityHigh Severity = "high"
	// SeverityMedium marks issues that need review before signature.
	SeverityMedium Severity = "medium"
	// SeverityLow marks advisory findings.
	SeverityLow Severity = "low"
)

// Severities lists all severities from most to least serious.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// ParseSeverity parses a severity name. Matching ignores case and
// surrounding whitespace, so "High", "high" and " HIGH " are equivalent.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want high, medium or low)", s)
	}
}

// Rank orders severities: high is 0, medium 1, low 2. Unknown values rank last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Rank() < 3
}

// AtLeast reports whether s is as serious as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Valid() && s.Rank() <= other.Rank()
}

// Label returns the capitalised display form ("High").
func (s Severity) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
