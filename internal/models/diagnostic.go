package models

import "time"

// Diagnostic records an input the service normalized instead of trusting:
// an out-of-domain vital, an unknown risk level or a dropped alert severity.
type Diagnostic struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Subject   string    `json:"subject"`
	Input     string    `json:"input"`
	Reason    string    `json:"reason"`
	PatientID int64     `json:"patient_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
