package models

import "time"

// Patient is borrowed from the upstream API for a single view cycle.
type Patient struct {
	ID       int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Email    string `json:"email,omitempty"`
}

// PatientSummary is one row of the patient roster.
type PatientSummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	RiskLevel   string    `json:"risk_level"`
	HealthScore float64   `json:"health_score"`
	HeartRate   float64   `json:"heart_rate"`
	Device      string    `json:"device,omitempty"`
	LastReading time.Time `json:"last_reading"`
}

// PatientPage is one page of the roster as returned upstream.
type PatientPage struct {
	Patients []PatientSummary `json:"patients"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}
