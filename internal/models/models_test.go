package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	s, ok := ParseSeverity(" CRITICAL ")
	assert.True(t, ok)
	assert.Equal(t, SeverityCritical, s)

	s, ok = ParseSeverity("Active")
	assert.True(t, ok)
	assert.Equal(t, SeverityActive, s)

	_, ok = ParseSeverity("emergency")
	assert.False(t, ok)
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, MaxSeverity(SeverityWarning, SeverityCritical))
	assert.Equal(t, SeverityWarning, MaxSeverity(SeverityWarning, SeverityStable))
	assert.Equal(t, SeverityStable, MaxSeverity(SeverityStable, SeverityActive))
}

func TestVitalSeriesAppend(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	var s VitalSeries
	s1, err := s.Append(VitalReading{HeartRate: 70, Timestamp: t0})
	require.NoError(t, err)
	s2, err := s1.Append(VitalReading{HeartRate: 75, Timestamp: t0.Add(time.Minute)})
	require.NoError(t, err)

	assert.Len(t, s1, 1)
	assert.Len(t, s2, 2)
	assert.Equal(t, float64(70), s2[0].HeartRate)

	_, err = s2.Append(VitalReading{HeartRate: 80, Timestamp: t0})
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Len(t, s2, 2)
}

func TestVitalReadingBloodPressure(t *testing.T) {
	r := VitalReading{}
	assert.Zero(t, r.Systolic())
	assert.Zero(t, r.Diastolic())

	r.BloodPressure = &BloodPressure{Systolic: 142, Diastolic: 86}
	assert.Equal(t, float64(142), r.Systolic())
	assert.Equal(t, float64(86), r.Diastolic())
}
