package models

import "time"

// RiskAssessment is produced by the external scoring service and is read-only
// here. RiskFactorsJSON is the raw payload; RiskFactors is filled in once the
// payload has been parsed.
type RiskAssessment struct {
	RiskLevel       string    `json:"risk_level"`
	RiskScore       float64   `json:"risk_score"`
	RiskFactorsJSON string    `json:"risk_factors_json,omitempty"`
	RiskFactors     []string  `json:"risk_factors,omitempty"`
	AssessedAt      time.Time `json:"assessment_date,omitempty"`
}

type Recommendation struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Warnings    string `json:"warnings"`
}

type ActivitySession struct {
	SessionID           int64     `json:"session_id"`
	ActivityType        string    `json:"activity_type"`
	StartTime           time.Time `json:"start_time"`
	DurationMinutes     *int      `json:"duration_minutes,omitempty"`
	AvgHeartRate        *int      `json:"avg_heart_rate,omitempty"`
	RecoveryTimeMinutes *int      `json:"recovery_time_minutes,omitempty"`
}

type ActivityPage struct {
	Activities []ActivitySession `json:"activities"`
	Total      int               `json:"total"`
}
