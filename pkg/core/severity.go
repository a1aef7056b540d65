package core

import "strings"

// Severity indicates how urgently a finding should be reviewed.
type Severity int

// Severity levels for findings.
const (
	// SeverityError marks a finding that is almost certainly a modelling error.
	SeverityError Severity = iota
	// SeverityWarning marks a candidate that needs review.
	SeverityWarning
	// SeverityInfo marks informational output such as the run summary.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Priority returns the BCF topic priority label for the severity.
func (s Severity) Priority() string {
	switch s {
	case SeverityError:
		return "High"
	case SeverityWarning:
		return "Normal"
	default:
		return "Low"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	default:
		return SeverityWarning, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
