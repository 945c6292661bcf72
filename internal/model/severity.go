package model

import (
	"fmt"
	"strings"
)

// Severity represents how strongly a single signal contributes to risk.
type Severity int

const (
	// SeverityLow marks weak signals such as digits or hyphens in a domain label.
	SeverityLow Severity = iota
	// SeverityMedium marks signals that are suspicious on their own but common in
	// legitimate content, such as urgency wording or a raw IP host.
	SeverityMedium
	// SeverityHigh marks signals that are rarely benign, such as credential requests,
	// payment pressure or brand impersonation.
	SeverityHigh
)

// String returns the lowercase name used in reports and JSON.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", name)
	}
}

// SeverityWeights maps each severity to its score contribution.
type SeverityWeights struct {
	Low    int `json:"low" yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// DefaultSeverityWeights returns the weights used by the fusion stage
// when nothing else is configured.
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{Low: 10, Medium: 22, High: 34}
}

// Weight returns the contribution of s under w.
func (w SeverityWeights) Weight(s Severity) int {
	switch s {
	case SeverityLow:
		return w.Low
	case SeverityMedium:
		return w.Medium
	case SeverityHigh:
		return w.High
	default:
		return 0
	}
}
