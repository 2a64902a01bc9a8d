package dashboard

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrViewClosed = errors.New("view closed")
	ErrSuperseded = errors.New("load superseded by a newer one")
)

// State is the lifecycle of a patient view.
type State string

const (
	StateLoading  State = "loading"
	StateNotFound State = "not_found"
	StateReady    State = "ready"
)

// ViewState is what a consumer renders.
type ViewState struct {
	State   State          `json:"state"`
	Message string         `json:"message,omitempty"`
	Patient *PatientDetail `json:"patient,omitempty"`
}

// View owns the state of one patient page. Loads are committed by a single
// writer under mu; a newer Load cancels the one in flight, and Close cancels
// everything when the consumer goes away.
type View struct {
	svc *Service

	mu     sync.Mutex
	state  ViewState
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

func (s *Service) NewView() *View {
	return &View{svc: s, state: ViewState{State: StateLoading, Message: LoadingMessage}}
}

// Load validates rawID, fetches the patient and commits the result. An
// invalid id is returned immediately without any fetch. Fetch failures are
// not returned: they commit the not-found state.
func (v *View) Load(ctx context.Context, rawID string, rng TimeRange) (ViewState, error) {
	id, err := ParsePatientID(rawID)
	if err != nil {
		return v.Current(), err
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ViewState{}, ErrViewClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state = ViewState{State: StateLoading, Message: LoadingMessage}
	v.mu.Unlock()
	defer cancel()

	snap, fetchErr := v.svc.fetch(loadCtx, id, rng.Days())

	var next ViewState
	switch {
	case fetchErr != nil:
		v.svc.logger.Errorf("Error loading patient %d: %v", id, fetchErr)
		next = ViewState{State: StateNotFound, Message: NotFoundMessage}
	case snap.patient.ID == 0 || snap.vitals.Timestamp.IsZero():
		v.svc.logger.Warnf("Patient %d has no profile or latest vitals", id)
		next = ViewState{State: StateNotFound, Message: NotFoundMessage}
	default:
		next = ViewState{State: StateReady, Patient: v.svc.buildDetail(loadCtx, snap, rng)}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ViewState{}, ErrViewClosed
	}
	if gen != v.gen {
		return v.state, ErrSuperseded
	}
	v.state = next
	v.cancel = nil
	return next, nil
}

func (v *View) Current() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Close cancels any in-flight load. Later loads fail with ErrViewClosed.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
