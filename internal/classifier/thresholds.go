package classifier

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds holds the cutoffs for every vital type. Bounds are exclusive in
// the escalating direction: a heart rate equal to HeartRateCriticalAbove is
// still a warning.
type Thresholds struct {
	HeartRateWarningAbove  float64 `json:"heart_rate_warning_above"`
	HeartRateCriticalAbove float64 `json:"heart_rate_critical_above"`
	SpO2WarningBelow       float64 `json:"spo2_warning_below"`
	SpO2CriticalBelow      float64 `json:"spo2_critical_below"`
	SystolicWarningAbove   float64 `json:"systolic_warning_above"`
	SystolicCriticalAbove  float64 `json:"systolic_critical_above"`
	HealthStableMin        float64 `json:"health_stable_min"`
	HealthWarningMin       float64 `json:"health_warning_min"`
}

// DefaultThresholds returns the adult-at-rest cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HeartRateWarningAbove:  110,
		HeartRateCriticalAbove: 130,
		SpO2WarningBelow:       95,
		SpO2CriticalBelow:      90,
		SystolicWarningAbove:   130,
		SystolicCriticalAbove:  140,
		HealthStableMin:        80,
		HealthWarningMin:       60,
	}
}

func (t Thresholds) Validate() error {
	values := map[string]float64{
		"heart_rate_warning_above":  t.HeartRateWarningAbove,
		"heart_rate_critical_above": t.HeartRateCriticalAbove,
		"spo2_warning_below":        t.SpO2WarningBelow,
		"spo2_critical_below":       t.SpO2CriticalBelow,
		"systolic_warning_above":    t.SystolicWarningAbove,
		"systolic_critical_above":   t.SystolicCriticalAbove,
		"health_stable_min":         t.HealthStableMin,
		"health_warning_min":        t.HealthWarningMin,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidThresholds, name, v)
		}
	}
	if t.HeartRateWarningAbove > t.HeartRateCriticalAbove {
		return fmt.Errorf("%w: heart rate warning bound %v exceeds critical bound %v",
			ErrInvalidThresholds, t.HeartRateWarningAbove, t.HeartRateCriticalAbove)
	}
	if t.SpO2CriticalBelow > t.SpO2WarningBelow {
		return fmt.Errorf("%w: spo2 critical bound %v exceeds warning bound %v",
			ErrInvalidThresholds, t.SpO2CriticalBelow, t.SpO2WarningBelow)
	}
	if t.SpO2WarningBelow > 100 {
		return fmt.Errorf("%w: spo2 warning bound %v is above 100%%", ErrInvalidThresholds, t.SpO2WarningBelow)
	}
	if t.SystolicWarningAbove > t.SystolicCriticalAbove {
		return fmt.Errorf("%w: systolic warning bound %v exceeds critical bound %v",
			ErrInvalidThresholds, t.SystolicWarningAbove, t.SystolicCriticalAbove)
	}
	if t.HealthWarningMin > t.HealthStableMin {
		return fmt.Errorf("%w: health warning minimum %v exceeds stable minimum %v",
			ErrInvalidThresholds, t.HealthWarningMin, t.HealthStableMin)
	}
	return nil
}
