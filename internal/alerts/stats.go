package alerts

import (
	"fmt"
	"strings"

	"clinical-dashboard/internal/models"
)

type Stats struct {
	SeverityBreakdown   map[string]int `json:"severity_breakdown"`
	UnacknowledgedCount int            `json:"unacknowledged_count"`
	CriticalCount       int            `json:"critical_count"`
}

// ComputeStats counts alerts per raw severity tag (lower-cased), along with
// the unacknowledged and critical totals.
func ComputeStats(list []models.Alert) Stats {
	s := Stats{SeverityBreakdown: map[string]int{}}
	for _, a := range list {
		tag := strings.ToLower(strings.TrimSpace(a.Severity))
		s.SeverityBreakdown[tag]++
		if !a.Acknowledged {
			s.UnacknowledgedCount++
		}
		if tag == string(models.SeverityCritical) {
			s.CriticalCount++
		}
	}
	return s
}

// CriticalBanner is the headline shown when critical alerts are pending.
// It is empty when there are none.
func CriticalBanner(criticalCount int) string {
	switch {
	case criticalCount <= 0:
		return ""
	case criticalCount == 1:
		return "1 critical alert requires immediate attention"
	}
	return fmt.Sprintf("%d critical alerts require immediate attention", criticalCount)
}
