package classifier

import (
	"math"
	"strconv"
	"strings"

	"clinical-dashboard/internal/models"
)

// Vital names the input a Result was computed from.
type Vital string

const (
	VitalHeartRate   Vital = "heart_rate"
	VitalSpO2        Vital = "spo2"
	VitalSystolic    Vital = "systolic"
	VitalRiskLevel   Vital = "risk_level"
	VitalHealthScore Vital = "health_score"
)

// Anomaly flags an input that fell back to stable because it could not be
// classified.
type Anomaly struct {
	Vital  Vital  `json:"vital"`
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// Result is the outcome of one classification. Anomaly is nil for inputs
// inside the clinical domain.
type Result struct {
	Severity models.Severity `json:"severity"`
	Anomaly  *Anomaly        `json:"anomaly,omitempty"`
}

// ReadingStatus is the per-vital classification of one VitalReading.
type ReadingStatus struct {
	HeartRate Result          `json:"heart_rate"`
	SpO2      Result          `json:"spo2"`
	Systolic  Result          `json:"systolic"`
	Overall   models.Severity `json:"overall"`
}

// Anomalies returns the anomalies of the reading in vital order.
func (s ReadingStatus) Anomalies() []Anomaly {
	var out []Anomaly
	for _, r := range []Result{s.HeartRate, s.SpO2, s.Systolic} {
		if r.Anomaly != nil {
			out = append(out, *r.Anomaly)
		}
	}
	return out
}

// Classifier maps vital-sign values and risk levels to a Severity. It holds
// no state besides its thresholds and is safe for concurrent use.
type Classifier struct {
	t Thresholds
}

func New(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{t: t}, nil
}

func (c *Classifier) Thresholds() Thresholds {
	return c.t
}

func (c *Classifier) HeartRate(bpm float64) Result {
	if a := outOfDomain(VitalHeartRate, bpm); a != nil {
		return fallback(a)
	}
	switch {
	case bpm > c.t.HeartRateCriticalAbove:
		return Result{Severity: models.SeverityCritical}
	case bpm > c.t.HeartRateWarningAbove:
		return Result{Severity: models.SeverityWarning}
	}
	return Result{Severity: models.SeverityStable}
}

func (c *Classifier) SpO2(percent float64) Result {
	if a := outOfDomain(VitalSpO2, percent); a != nil {
		return fallback(a)
	}
	if percent > 100 {
		return fallback(&Anomaly{Vital: VitalSpO2, Input: formatFloat(percent), Reason: "above 100 percent"})
	}
	switch {
	case percent < c.t.SpO2CriticalBelow:
		return Result{Severity: models.SeverityCritical}
	case percent < c.t.SpO2WarningBelow:
		return Result{Severity: models.SeverityWarning}
	}
	return Result{Severity: models.SeverityStable}
}

func (c *Classifier) Systolic(mmHg float64) Result {
	if a := outOfDomain(VitalSystolic, mmHg); a != nil {
		return fallback(a)
	}
	switch {
	case mmHg > c.t.SystolicCriticalAbove:
		return Result{Severity: models.SeverityCritical}
	case mmHg > c.t.SystolicWarningAbove:
		return Result{Severity: models.SeverityWarning}
	}
	return Result{Severity: models.SeverityStable}
}

// HealthScore buckets a 0-100 roster health score.
func (c *Classifier) HealthScore(score float64) Result {
	if a := outOfDomain(VitalHealthScore, score); a != nil {
		return fallback(a)
	}
	switch {
	case score >= c.t.HealthStableMin:
		return Result{Severity: models.SeverityStable}
	case score >= c.t.HealthWarningMin:
		return Result{Severity: models.SeverityWarning}
	}
	return Result{Severity: models.SeverityCritical}
}

// RiskLevel maps an externally computed risk level, case-insensitively.
// Unrecognized levels fall back to stable and carry an anomaly.
func (c *Classifier) RiskLevel(level string) Result {
	switch models.RiskLevel(strings.ToLower(strings.TrimSpace(level))) {
	case models.RiskHigh:
		return Result{Severity: models.SeverityCritical}
	case models.RiskModerate:
		return Result{Severity: models.SeverityWarning}
	case models.RiskLow:
		return Result{Severity: models.SeverityStable}
	}
	return fallback(&Anomaly{Vital: VitalRiskLevel, Input: level, Reason: "unrecognized risk level"})
}

// Reading classifies every vital of r. A reading without blood pressure
// classifies systolic as stable.
func (c *Classifier) Reading(r models.VitalReading) ReadingStatus {
	s := ReadingStatus{
		HeartRate: c.HeartRate(r.HeartRate),
		SpO2:      c.SpO2(r.SpO2),
		Systolic:  c.Systolic(r.Systolic()),
	}
	s.Overall = models.MaxSeverity(s.HeartRate.Severity, models.MaxSeverity(s.SpO2.Severity, s.Systolic.Severity))
	return s
}

func outOfDomain(v Vital, x float64) *Anomaly {
	switch {
	case math.IsNaN(x):
		return &Anomaly{Vital: v, Input: "NaN", Reason: "not a number"}
	case math.IsInf(x, 0):
		return &Anomaly{Vital: v, Input: formatFloat(x), Reason: "infinite value"}
	case x < 0:
		return &Anomaly{Vital: v, Input: formatFloat(x), Reason: "negative value"}
	}
	return nil
}

func fallback(a *Anomaly) Result {
	return Result{Severity: models.SeverityStable, Anomaly: a}
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
