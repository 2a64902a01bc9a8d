package alerts

import (
	"strings"

	"clinical-dashboard/internal/models"
)

// Groups is an alert collection partitioned for display: critical first,
// then warning, then active. Dropped holds alerts whose severity tag matched
// none of the buckets so callers can report them.
type Groups struct {
	Critical []models.Alert `json:"critical"`
	Warning  []models.Alert `json:"warning"`
	Active   []models.Alert `json:"active"`
	Dropped  []models.Alert `json:"-"`
}

// Group partitions alerts by severity tag, matched case-insensitively. Input
// order is kept inside each bucket and the input slice is not modified.
func Group(list []models.Alert) Groups {
	g := Groups{
		Critical: []models.Alert{},
		Warning:  []models.Alert{},
		Active:   []models.Alert{},
	}
	for _, a := range list {
		sev, ok := models.ParseSeverity(a.Severity)
		switch {
		case ok && sev == models.SeverityCritical:
			g.Critical = append(g.Critical, a)
		case ok && sev == models.SeverityWarning:
			g.Warning = append(g.Warning, a)
		case ok && sev == models.SeverityActive:
			g.Active = append(g.Active, a)
		default:
			g.Dropped = append(g.Dropped, a)
		}
	}
	return g
}

// Len counts the grouped alerts, excluding dropped ones.
func (g Groups) Len() int {
	return len(g.Critical) + len(g.Warning) + len(g.Active)
}

// Ordered flattens the buckets in display order.
func (g Groups) Ordered() []models.Alert {
	out := make([]models.Alert, 0, g.Len())
	out = append(out, g.Critical...)
	out = append(out, g.Warning...)
	return append(out, g.Active...)
}

// TierOf names the bucket an alert belongs to, or "" when it is dropped.
func TierOf(a models.Alert) models.Severity {
	sev, ok := models.ParseSeverity(a.Severity)
	if !ok || sev == models.SeverityStable {
		return ""
	}
	return sev
}

// DisplayTier is the styling used by the patient alert history, where
// emergency alerts render like critical ones and everything else as warning.
func DisplayTier(severity string) models.Severity {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical", "emergency":
		return models.SeverityCritical
	}
	return models.SeverityWarning
}
