package classifier

import (
	"math"
	"testing"

	"clinical-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultThresholds())
	require.NoError(t, err)
	return c
}

func TestHeartRate(t *testing.T) {
	c := newDefault(t)
	cases := []struct {
		bpm  float64
		want models.Severity
	}{
		{0, models.SeverityStable},
		{72, models.SeverityStable},
		{110, models.SeverityStable},
		{110.5, models.SeverityWarning},
		{112, models.SeverityWarning},
		{130, models.SeverityWarning},
		{130.1, models.SeverityCritical},
		{180, models.SeverityCritical},
	}
	for _, tc := range cases {
		got := c.HeartRate(tc.bpm)
		assert.Equal(t, tc.want, got.Severity, "heart rate %v", tc.bpm)
		assert.Nil(t, got.Anomaly)
	}
}

func TestHeartRateProperty(t *testing.T) {
	c := newDefault(t)
	for v := 0.0; v <= 200; v += 0.5 {
		got := c.HeartRate(v).Severity
		switch {
		case v > 130:
			assert.Equal(t, models.SeverityCritical, got, "v=%v", v)
		case v > 110:
			assert.Equal(t, models.SeverityWarning, got, "v=%v", v)
		default:
			assert.Equal(t, models.SeverityStable, got, "v=%v", v)
		}
	}
}

func TestSpO2(t *testing.T) {
	c := newDefault(t)
	assert.Equal(t, models.SeverityCritical, c.SpO2(85).Severity)
	assert.Equal(t, models.SeverityCritical, c.SpO2(89.9).Severity)
	assert.Equal(t, models.SeverityWarning, c.SpO2(90).Severity)
	assert.Equal(t, models.SeverityWarning, c.SpO2(94.9).Severity)
	assert.Equal(t, models.SeverityStable, c.SpO2(95).Severity)
	assert.Equal(t, models.SeverityStable, c.SpO2(100).Severity)
}

func TestSystolic(t *testing.T) {
	c := newDefault(t)
	assert.Equal(t, models.SeverityStable, c.Systolic(120).Severity)
	assert.Equal(t, models.SeverityStable, c.Systolic(130).Severity)
	assert.Equal(t, models.SeverityWarning, c.Systolic(131).Severity)
	assert.Equal(t, models.SeverityWarning, c.Systolic(140).Severity)
	assert.Equal(t, models.SeverityCritical, c.Systolic(142).Severity)
}

func TestRiskLevel(t *testing.T) {
	c := newDefault(t)
	assert.Equal(t, models.SeverityCritical, c.RiskLevel("high").Severity)
	assert.Equal(t, c.RiskLevel("high"), c.RiskLevel("HIGH"))
	assert.Equal(t, models.SeverityWarning, c.RiskLevel(" Moderate ").Severity)
	assert.Equal(t, models.SeverityStable, c.RiskLevel("low").Severity)
	assert.Nil(t, c.RiskLevel("low").Anomaly)

	unknown := c.RiskLevel("unknown")
	assert.Equal(t, models.SeverityStable, unknown.Severity)
	require.NotNil(t, unknown.Anomaly)
	assert.Equal(t, VitalRiskLevel, unknown.Anomaly.Vital)
	assert.Equal(t, "unknown", unknown.Anomaly.Input)
}

func TestHealthScore(t *testing.T) {
	c := newDefault(t)
	assert.Equal(t, models.SeverityStable, c.HealthScore(88).Severity)
	assert.Equal(t, models.SeverityStable, c.HealthScore(80).Severity)
	assert.Equal(t, models.SeverityWarning, c.HealthScore(65).Severity)
	assert.Equal(t, models.SeverityCritical, c.HealthScore(45).Severity)
}

func TestOutOfDomainFallsBackWithAnomaly(t *testing.T) {
	c := newDefault(t)
	cases := map[string]Result{
		"negative heart rate": c.HeartRate(-5),
		"NaN heart rate":      c.HeartRate(math.NaN()),
		"infinite systolic":   c.Systolic(math.Inf(1)),
		"spo2 above 100":      c.SpO2(104),
		"negative spo2":       c.SpO2(-1),
		"NaN health score":    c.HealthScore(math.NaN()),
	}
	for name, got := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, models.SeverityStable, got.Severity)
			require.NotNil(t, got.Anomaly)
			assert.NotEmpty(t, got.Anomaly.Reason)
		})
	}
}

func TestReading(t *testing.T) {
	c := newDefault(t)
	st := c.Reading(models.VitalReading{
		HeartRate:     112,
		SpO2:          89,
		BloodPressure: &models.BloodPressure{Systolic: 120, Diastolic: 80},
	})
	assert.Equal(t, models.SeverityWarning, st.HeartRate.Severity)
	assert.Equal(t, models.SeverityCritical, st.SpO2.Severity)
	assert.Equal(t, models.SeverityStable, st.Systolic.Severity)
	assert.Equal(t, models.SeverityCritical, st.Overall)
	assert.Empty(t, st.Anomalies())

	noBP := c.Reading(models.VitalReading{HeartRate: -1, SpO2: 97})
	assert.Equal(t, models.SeverityStable, noBP.Systolic.Severity)
	assert.Equal(t, models.SeverityStable, noBP.Overall)
	require.Len(t, noBP.Anomalies(), 1)
	assert.Equal(t, VitalHeartRate, noBP.Anomalies()[0].Vital)
}

func TestCustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.HeartRateWarningAbove = 100
	th.HeartRateCriticalAbove = 120
	c, err := New(th)
	require.NoError(t, err)

	assert.Equal(t, models.SeverityWarning, c.HeartRate(105).Severity)
	assert.Equal(t, models.SeverityCritical, c.HeartRate(121).Severity)
	assert.Equal(t, th, c.Thresholds())
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.HeartRateWarningAbove = 140
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)

	bad = DefaultThresholds()
	bad.SpO2CriticalBelow = 96
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)

	bad = DefaultThresholds()
	bad.SystolicCriticalAbove = math.NaN()
	assert.ErrorIs(t, bad.Validate(), ErrInvalidThresholds)

	_, err := New(bad)
	assert.ErrorIs(t, err, ErrInvalidThresholds)
}
