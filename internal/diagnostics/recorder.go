package diagnostics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"

	"github.com/google/uuid"
)

const (
	SourceClassifier = "classifier"
	SourceAlerts     = "alert_grouping"
	SourceStream     = "alert_stream"
)

var ErrNoStore = errors.New("diagnostics store not configured")

// Store persists diagnostics. It is optional; without one diagnostics are
// only logged.
type Store interface {
	SaveDiagnostic(ctx context.Context, d models.Diagnostic) error
	ListDiagnostics(ctx context.Context, limit int) ([]models.Diagnostic, error)
}

// Recorder makes every fallback visible: it logs a warning and, when a store
// is configured, persists the event.
type Recorder struct {
	logger *logging.Logger
	store  Store
	now    func() time.Time
}

func New(logger *logging.Logger, store Store) *Recorder {
	return &Recorder{logger: logger, store: store, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, d models.Diagnostic) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now().UTC()
	}
	r.logger.Warnf("Diagnostic [%s] %s=%q: %s (patient_id=%d)", d.Source, d.Subject, d.Input, d.Reason, d.PatientID)
	if r.store == nil {
		return
	}
	if err := r.store.SaveDiagnostic(ctx, d); err != nil {
		r.logger.Errorf("Failed to persist diagnostic %s: %v", d.ID, err)
	}
}

// Anomaly records a classifier fallback for the given patient (0 if unknown).
func (r *Recorder) Anomaly(ctx context.Context, patientID int64, a classifier.Anomaly) {
	r.Record(ctx, models.Diagnostic{
		Source:    SourceClassifier,
		Subject:   string(a.Vital),
		Input:     a.Input,
		Reason:    a.Reason,
		PatientID: patientID,
	})
}

// ReportResult is a convenience for callers holding a classifier.Result.
func (r *Recorder) ReportResult(ctx context.Context, patientID int64, res classifier.Result) {
	if res.Anomaly != nil {
		r.Anomaly(ctx, patientID, *res.Anomaly)
	}
}

// DroppedAlert records an alert left out of every severity group.
func (r *Recorder) DroppedAlert(ctx context.Context, source string, a models.Alert) {
	r.Record(ctx, models.Diagnostic{
		Source:    source,
		Subject:   "alert_severity",
		Input:     a.Severity,
		Reason:    "unrecognized alert severity, alert " + strconv.FormatInt(a.AlertID, 10) + " dropped",
		PatientID: a.UserID,
	})
}

func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.Diagnostic, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.ListDiagnostics(ctx, limit)
}
