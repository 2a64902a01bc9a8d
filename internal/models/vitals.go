package models

import (
	"errors"
	"time"
)

var ErrOutOfOrder = errors.New("reading is older than the last reading in the series")

type BloodPressure struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
}

// VitalReading is an immutable snapshot of one patient's vitals.
type VitalReading struct {
	HeartRate     float64        `json:"heart_rate"`
	SpO2          float64        `json:"spo2"`
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty"`
	SourceDevice  string         `json:"source_device,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// Systolic returns the systolic pressure, or 0 when the reading has none.
func (v VitalReading) Systolic() float64 {
	if v.BloodPressure == nil {
		return 0
	}
	return v.BloodPressure.Systolic
}

// Diastolic returns the diastolic pressure, or 0 when the reading has none.
func (v VitalReading) Diastolic() float64 {
	if v.BloodPressure == nil {
		return 0
	}
	return v.BloodPressure.Diastolic
}

// VitalSeries is an append-only sequence of readings ordered by timestamp.
type VitalSeries []VitalReading

// Append returns a new series with r added at the end. The receiver is left
// untouched, and r must not be older than the current last reading.
func (s VitalSeries) Append(r VitalReading) (VitalSeries, error) {
	if n := len(s); n > 0 && r.Timestamp.Before(s[n-1].Timestamp) {
		return s, ErrOutOfOrder
	}
	out := make(VitalSeries, len(s), len(s)+1)
	copy(out, s)
	return append(out, r), nil
}

// VitalsHistory is one page of a patient's vitals history.
type VitalsHistory struct {
	Vitals   []VitalReading `json:"vitals"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
