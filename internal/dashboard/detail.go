package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinical-dashboard/internal/alerts"
	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/models"
)

const (
	NoAlertsPlaceholder         = "No alerts available"
	NoSessionsPlaceholder       = "No sessions yet"
	NoHistoryPlaceholder        = "No vitals history available for chart"
	NoFactorsPlaceholder        = "No contributing factors available."
	NoRecommendationPlaceholder = "No recommendation available."
	NotFoundMessage             = "Patient data not found"
	LoadingMessage              = "Loading patient data..."
)

// PatientDetail is the render-ready model of the patient page.
type PatientDetail struct {
	Header         Header         `json:"header"`
	Vitals         VitalsPanel    `json:"vitals"`
	Risk           RiskPanel      `json:"risk"`
	Range          TimeRange      `json:"range"`
	Chart          Chart          `json:"chart"`
	Alerts         AlertHistory   `json:"alerts"`
	Sessions       SessionHistory `json:"sessions"`
	Recommendation string         `json:"recommendation"`
}

type Header struct {
	PatientID     int64     `json:"patient_id"`
	Name          string    `json:"name"`
	Initials      string    `json:"initials"`
	Gender        string    `json:"gender"`
	Age           int       `json:"age"`
	LastReading   string    `json:"last_reading"`
	LastReadingAt time.Time `json:"last_reading_at"`
	Device        string    `json:"device"`
}

type VitalTile struct {
	Display string              `json:"display"`
	Unit    string              `json:"unit"`
	Status  models.Severity     `json:"status"`
	Anomaly *classifier.Anomaly `json:"anomaly,omitempty"`
}

type VitalsPanel struct {
	HeartRate     VitalTile       `json:"heart_rate"`
	SpO2          VitalTile       `json:"spo2"`
	BloodPressure VitalTile       `json:"blood_pressure"`
	Overall       models.Severity `json:"overall"`
}

type RiskPanel struct {
	Level       string          `json:"level"`
	Score       float64         `json:"score"`
	ScoreText   string          `json:"score_text"`
	Status      models.Severity `json:"status"`
	Factors     []string        `json:"factors"`
	Placeholder string          `json:"placeholder,omitempty"`
}

type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate float64   `json:"hr"`
	SpO2      float64   `json:"spo2"`
	Systolic  *float64  `json:"systolic"`
}

type Chart struct {
	Points      []ChartPoint `json:"points"`
	Placeholder string       `json:"placeholder,omitempty"`
}

type AlertItem struct {
	AlertID  int64           `json:"alert_id"`
	Severity string          `json:"severity"`
	Tier     models.Severity `json:"tier"`
	Label    string          `json:"label"`
	TimeAgo  string          `json:"time_ago"`
}

type AlertHistory struct {
	Items       []AlertItem `json:"items"`
	Placeholder string      `json:"placeholder,omitempty"`
}

type SessionItem struct {
	SessionID int64  `json:"session_id"`
	Summary   string `json:"summary"`
	Detail    string `json:"detail"`
}

type SessionHistory struct {
	Items       []SessionItem `json:"items"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// snapshot is everything fetched for one patient page load.
type snapshot struct {
	patient        models.Patient
	vitals         models.VitalReading
	risk           models.RiskAssessment
	recommendation models.Recommendation
	alerts         []models.Alert
	activities     []models.ActivitySession
	history        []models.VitalReading
}

func (s *Service) buildDetail(ctx context.Context, snap snapshot, rng TimeRange) *PatientDetail {
	now := s.now()
	p, v := snap.patient, snap.vitals

	device := v.SourceDevice
	if device == "" {
		device = "Unknown device"
	}

	d := &PatientDetail{
		Header: Header{
			PatientID:     p.ID,
			Name:          p.FullName,
			Initials:      Initials(p.FullName),
			Gender:        capitalize(p.Gender),
			Age:           p.Age,
			LastReading:   TimeAgo(v.Timestamp, now),
			LastReadingAt: v.Timestamp,
			Device:        device,
		},
		Range: rng,
	}

	status := s.classifier.Reading(v)
	for _, a := range status.Anomalies() {
		s.recorder.Anomaly(ctx, p.ID, a)
	}
	d.Vitals = VitalsPanel{
		HeartRate: VitalTile{Display: formatMeasure(v.HeartRate), Unit: "BPM", Status: status.HeartRate.Severity, Anomaly: status.HeartRate.Anomaly},
		SpO2:      VitalTile{Display: strconv.FormatFloat(v.SpO2, 'f', 0, 64) + "%", Unit: "%", Status: status.SpO2.Severity, Anomaly: status.SpO2.Anomaly},
		BloodPressure: VitalTile{
			Display: formatMeasure(v.Systolic()) + "/" + formatMeasure(v.Diastolic()),
			Unit:    "mmHg",
			Status:  status.Systolic.Severity,
			Anomaly: status.Systolic.Anomaly,
		},
		Overall: status.Overall,
	}

	d.Risk = s.riskPanel(ctx, p.ID, snap.risk)
	d.Chart = buildChart(snap.history)
	d.Alerts = buildAlertHistory(snap.alerts, now)
	d.Sessions = buildSessions(snap.activities)

	switch {
	case snap.recommendation.Description != "":
		d.Recommendation = snap.recommendation.Description
	case snap.recommendation.Warnings != "":
		d.Recommendation = snap.recommendation.Warnings
	default:
		d.Recommendation = NoRecommendationPlaceholder
	}
	return d
}

func (s *Service) riskPanel(ctx context.Context, patientID int64, risk models.RiskAssessment) RiskPanel {
	level := risk.RiskLevel
	if level == "" {
		level = string(models.RiskLow)
	}
	res := s.classifier.RiskLevel(level)
	s.recorder.ReportResult(ctx, patientID, res)

	factors := ParseRiskFactors(risk.RiskFactorsJSON)
	if factors == nil && len(risk.RiskFactors) > 0 {
		factors = append([]string(nil), risk.RiskFactors...)
	}
	panel := RiskPanel{
		Level:     strings.ToUpper(level),
		Score:     risk.RiskScore,
		ScoreText: strconv.FormatFloat(risk.RiskScore, 'f', 2, 64),
		Status:    res.Severity,
		Factors:   factors,
	}
	if len(factors) == 0 {
		panel.Factors = []string{}
		panel.Placeholder = NoFactorsPlaceholder
	}
	return panel
}

func buildChart(history []models.VitalReading) Chart {
	if len(history) == 0 {
		return Chart{Points: []ChartPoint{}, Placeholder: NoHistoryPlaceholder}
	}
	points := make([]ChartPoint, 0, len(history))
	for _, v := range history {
		pt := ChartPoint{Timestamp: v.Timestamp, HeartRate: v.HeartRate, SpO2: v.SpO2}
		if sys := v.Systolic(); sys != 0 {
			pt.Systolic = &sys
		}
		points = append(points, pt)
	}
	return Chart{Points: points}
}

func buildAlertHistory(list []models.Alert, now time.Time) AlertHistory {
	if len(list) == 0 {
		return AlertHistory{Items: []AlertItem{}, Placeholder: NoAlertsPlaceholder}
	}
	items := make([]AlertItem, 0, len(list))
	for _, a := range list {
		title := a.Title
		if title == "" {
			title = alerts.HumanizeType(a.AlertType)
		}
		items = append(items, AlertItem{
			AlertID:  a.AlertID,
			Severity: a.Severity,
			Tier:     alerts.DisplayTier(a.Severity),
			Label:    fmt.Sprintf("%s: %s", strings.ToUpper(a.Severity), title),
			TimeAgo:  TimeAgo(a.CreatedAt, now),
		})
	}
	return AlertHistory{Items: items}
}

func buildSessions(list []models.ActivitySession) SessionHistory {
	if len(list) == 0 {
		return SessionHistory{Items: []SessionItem{}, Placeholder: NoSessionsPlaceholder}
	}
	items := make([]SessionItem, 0, len(list))
	for _, a := range list {
		items = append(items, SessionItem{
			SessionID: a.SessionID,
			Summary: fmt.Sprintf("%s: %s-min %s",
				a.StartTime.Format("Jan 2, 2006"), optionalInt(a.DurationMinutes), alerts.HumanizeType(a.ActivityType)),
			Detail: fmt.Sprintf("Avg HR: %s BPM • Recovery: %s min",
				optionalInt(a.AvgHeartRate), optionalInt(a.RecoveryTimeMinutes)),
		})
	}
	return SessionHistory{Items: items}
}
