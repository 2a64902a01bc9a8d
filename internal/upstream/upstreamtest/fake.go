// Package upstreamtest provides an in-memory upstream.API for tests.
package upstreamtest

import (
	"context"
	"sync"

	"clinical-dashboard/internal/models"
	"clinical-dashboard/internal/upstream"
)

// Fake serves canned data. Unknown patient ids return upstream.ErrNotFound.
// Block, when set, makes every call wait until it is closed or the caller's
// context ends.
type Fake struct {
	mu sync.Mutex

	Users           map[int64]models.Patient
	Vitals          map[int64]models.VitalReading
	Risks           map[int64]models.RiskAssessment
	Recommendations map[int64]models.Recommendation
	Alerts          map[int64][]models.Alert
	Activities      map[int64][]models.ActivitySession
	History         map[int64][]models.VitalReading
	Patients        []models.PatientSummary
	RecentAlerts    []models.Alert
	Block           chan struct{}

	failures map[string]error
	calls    map[string]int
	lastArgs map[string][]int
}

func New() *Fake {
	return &Fake{
		Users:           map[int64]models.Patient{},
		Vitals:          map[int64]models.VitalReading{},
		Risks:           map[int64]models.RiskAssessment{},
		Recommendations: map[int64]models.Recommendation{},
		Alerts:          map[int64][]models.Alert{},
		Activities:      map[int64][]models.ActivitySession{},
		History:         map[int64][]models.VitalReading{},
		failures:        map[string]error{},
		calls:           map[string]int{},
		lastArgs:        map[string][]int{},
	}
}

// Fail makes the named method return err.
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Args returns the paging arguments of the last call to method.
func (f *Fake) Args(method string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastArgs[method]
}

func (f *Fake) enter(ctx context.Context, method string, args ...int) error {
	f.mu.Lock()
	f.calls[method]++
	f.lastArgs[method] = args
	block := f.Block
	err := f.failures[method]
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (f *Fake) GetUserByID(ctx context.Context, id int64) (models.Patient, error) {
	if err := f.enter(ctx, "GetUserByID"); err != nil {
		return models.Patient{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Users[id]
	if !ok {
		return models.Patient{}, upstream.ErrNotFound
	}
	return p, nil
}

func (f *Fake) GetLatestVitalSigns(ctx context.Context, id int64) (models.VitalReading, error) {
	if err := f.enter(ctx, "GetLatestVitalSigns"); err != nil {
		return models.VitalReading{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.Vitals[id]
	if !ok {
		return models.VitalReading{}, upstream.ErrNotFound
	}
	return v, nil
}

func (f *Fake) GetLatestRiskAssessment(ctx context.Context, id int64) (models.RiskAssessment, error) {
	if err := f.enter(ctx, "GetLatestRiskAssessment"); err != nil {
		return models.RiskAssessment{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Risks[id], nil
}

func (f *Fake) GetLatestRecommendation(ctx context.Context, id int64) (models.Recommendation, error) {
	if err := f.enter(ctx, "GetLatestRecommendation"); err != nil {
		return models.Recommendation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Recommendations[id], nil
}

func (f *Fake) GetAlerts(ctx context.Context, id int64, page, pageSize int) (models.AlertPage, error) {
	if err := f.enter(ctx, "GetAlerts", page, pageSize); err != nil {
		return models.AlertPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.Alerts[id]
	return models.AlertPage{Alerts: list, Total: len(list), Page: page, PageSize: pageSize}, nil
}

func (f *Fake) GetActivities(ctx context.Context, id int64, limit, offset int) (models.ActivityPage, error) {
	if err := f.enter(ctx, "GetActivities", limit, offset); err != nil {
		return models.ActivityPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.Activities[id]
	return models.ActivityPage{Activities: list, Total: len(list)}, nil
}

func (f *Fake) GetVitalSignsHistory(ctx context.Context, id int64, days, page, pageSize int) (models.VitalsHistory, error) {
	if err := f.enter(ctx, "GetVitalSignsHistory", days, page, pageSize); err != nil {
		return models.VitalsHistory{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.History[id]
	return models.VitalsHistory{Vitals: list, Total: len(list), Page: page, PageSize: pageSize}, nil
}

func (f *Fake) ListPatients(ctx context.Context, page, pageSize int) (models.PatientPage, error) {
	if err := f.enter(ctx, "ListPatients", page, pageSize); err != nil {
		return models.PatientPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.PatientPage{Patients: f.Patients, Total: len(f.Patients), Page: page, PageSize: pageSize}, nil
}

func (f *Fake) ListRecentAlerts(ctx context.Context, page, pageSize int) (models.AlertPage, error) {
	if err := f.enter(ctx, "ListRecentAlerts", page, pageSize); err != nil {
		return models.AlertPage{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.AlertPage{Alerts: f.RecentAlerts, Total: len(f.RecentAlerts), Page: page, PageSize: pageSize}, nil
}

var _ upstream.API = (*Fake)(nil)
