package models

import "strings"

// Severity is the clinical escalation tier that drives badge colour, icon
// choice and banner emphasis.
type Severity string

const (
	SeverityStable   Severity = "stable"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	// SeverityActive is only used for alerts with no risk implication.
	SeverityActive Severity = "active"
)

// Rank orders severities for escalation: stable < warning < critical.
// Active carries no risk and ranks with stable.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the more severe of a and b, preferring a on ties.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// ParseSeverity normalizes an alert severity tag. ok is false when the tag is
// not one of the four known tiers.
func ParseSeverity(tag string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(tag)))
	switch s {
	case SeverityStable, SeverityWarning, SeverityCritical, SeverityActive:
		return s, true
	}
	return "", false
}

// RiskLevel is the qualitative output of the external risk scoring service.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)
