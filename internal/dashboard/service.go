package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/upstream"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidPatientID = errors.New("invalid patient id")

const (
	alertsPage       = 1
	alertsPageSize   = 5
	activitiesLimit  = 5
	activitiesOffset = 0
	historyPage      = 1
	historyPageSize  = 100
	rosterPageSize   = 200
	recentAlertsSize = 50
)

// Service builds dashboard view models from the upstream API.
type Service struct {
	api        upstream.API
	classifier *classifier.Classifier
	recorder   *diagnostics.Recorder
	logger     *logging.Logger
	now        func() time.Time
}

func NewService(api upstream.API, c *classifier.Classifier, recorder *diagnostics.Recorder, logger *logging.Logger) *Service {
	return &Service{
		api:        api,
		classifier: c,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// ParsePatientID accepts a positive decimal id.
func ParsePatientID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing", ErrInvalidPatientID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPatientID, raw)
	}
	return id, nil
}

// fetch issues the seven patient calls concurrently. The first failure
// cancels the rest and is returned; no partial snapshot is produced.
func (s *Service) fetch(ctx context.Context, id int64, days int) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.api.GetUserByID(gctx, id)
		snap.patient = p
		return wrap("user", err)
	})
	g.Go(func() error {
		v, err := s.api.GetLatestVitalSigns(gctx, id)
		snap.vitals = v
		return wrap("latest vitals", err)
	})
	g.Go(func() error {
		r, err := s.api.GetLatestRiskAssessment(gctx, id)
		snap.risk = r
		return wrap("risk assessment", err)
	})
	g.Go(func() error {
		r, err := s.api.GetLatestRecommendation(gctx, id)
		snap.recommendation = r
		return wrap("recommendation", err)
	})
	g.Go(func() error {
		page, err := s.api.GetAlerts(gctx, id, alertsPage, alertsPageSize)
		snap.alerts = page.Alerts
		return wrap("alerts", err)
	})
	g.Go(func() error {
		page, err := s.api.GetActivities(gctx, id, activitiesLimit, activitiesOffset)
		snap.activities = page.Activities
		return wrap("activities", err)
	})
	g.Go(func() error {
		h, err := s.api.GetVitalSignsHistory(gctx, id, days, historyPage, historyPageSize)
		snap.history = h.Vitals
		return wrap("vitals history", err)
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", what, err)
}
