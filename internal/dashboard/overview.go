package dashboard

import (
	"context"

	"clinical-dashboard/internal/alerts"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/models"
	"clinical-dashboard/internal/roster"

	"golang.org/x/sync/errgroup"
)

const (
	CollectionReady       = "ready"
	CollectionUnavailable = "unavailable"
)

// RosterRow is a roster entry with its classified statuses.
type RosterRow struct {
	models.PatientSummary
	Status       models.Severity `json:"status"`
	HealthStatus models.Severity `json:"health_status"`
}

type RosterView struct {
	State    string      `json:"state"`
	Total    int         `json:"total"`
	Patients []RosterRow `json:"patients"`
}

type RosterStats struct {
	Total     int `json:"total"`
	Stable    int `json:"stable"`
	Attention int `json:"attention"`
	Critical  int `json:"critical"`
}

type Overview struct {
	State      string        `json:"state"`
	Stats      RosterStats   `json:"stats"`
	Alerts     alerts.Groups `json:"alerts"`
	AlertStats alerts.Stats  `json:"alert_stats"`
	Banner     string        `json:"banner,omitempty"`
}

// Roster returns the filtered and sorted patient list. A fetch failure
// yields an empty, unavailable roster.
func (s *Service) Roster(ctx context.Context, q roster.Query) RosterView {
	page, err := s.api.ListPatients(ctx, 1, rosterPageSize)
	if err != nil {
		s.logger.Errorf("Error loading patient roster: %v", err)
		return RosterView{State: CollectionUnavailable, Patients: []RosterRow{}}
	}
	projected := roster.Project(page.Patients, q)
	rows := make([]RosterRow, 0, len(projected))
	for _, p := range projected {
		rows = append(rows, s.rosterRow(ctx, p))
	}
	return RosterView{State: CollectionReady, Total: len(page.Patients), Patients: rows}
}

func (s *Service) rosterRow(ctx context.Context, p models.PatientSummary) RosterRow {
	level := p.RiskLevel
	if level == "" {
		level = string(models.RiskLow)
	}
	risk := s.classifier.RiskLevel(level)
	s.recorder.ReportResult(ctx, p.ID, risk)
	health := s.classifier.HealthScore(p.HealthScore)
	s.recorder.ReportResult(ctx, p.ID, health)
	return RosterRow{PatientSummary: p, Status: risk.Severity, HealthStatus: health.Severity}
}

// GroupedAlerts groups recent alerts across all patients. Alerts with an
// unrecognized severity are reported and left out.
func (s *Service) GroupedAlerts(ctx context.Context) (alerts.Groups, alerts.Stats, error) {
	page, err := s.api.ListRecentAlerts(ctx, 1, recentAlertsSize)
	if err != nil {
		return alerts.Group(nil), alerts.ComputeStats(nil), err
	}
	g := s.group(ctx, page.Alerts)
	return g, alerts.ComputeStats(page.Alerts), nil
}

func (s *Service) group(ctx context.Context, list []models.Alert) alerts.Groups {
	g := alerts.Group(list)
	for _, a := range g.Dropped {
		s.recorder.DroppedAlert(ctx, diagnostics.SourceAlerts, a)
	}
	return g
}

// Overview assembles the clinical dashboard: roster counts by risk status,
// grouped recent alerts and the critical banner.
func (s *Service) Overview(ctx context.Context) Overview {
	var (
		patients []models.PatientSummary
		recent   []models.Alert
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.api.ListPatients(gctx, 1, rosterPageSize)
		patients = page.Patients
		return wrap("roster", err)
	})
	g.Go(func() error {
		page, err := s.api.ListRecentAlerts(gctx, 1, recentAlertsSize)
		recent = page.Alerts
		return wrap("recent alerts", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.Errorf("Error loading overview: %v", err)
		return Overview{
			State:      CollectionUnavailable,
			Alerts:     alerts.Group(nil),
			AlertStats: alerts.ComputeStats(nil),
		}
	}

	var stats RosterStats
	for _, p := range patients {
		stats.Total++
		switch s.rosterRow(ctx, p).Status {
		case models.SeverityCritical:
			stats.Critical++
		case models.SeverityWarning:
			stats.Attention++
		default:
			stats.Stable++
		}
	}

	grouped := s.group(ctx, recent)
	return Overview{
		State:      CollectionReady,
		Stats:      stats,
		Alerts:     grouped,
		AlertStats: alerts.ComputeStats(recent),
		Banner:     alerts.CriticalBanner(len(grouped.Critical)),
	}
}
