package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"clinical-dashboard/internal/alerts"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Escalator forwards critical alerts to an out-of-band channel.
type Escalator interface {
	Escalate(ctx context.Context, a models.Alert) error
}

// Event is what subscribers receive for each alert.
type Event struct {
	Alert       models.Alert       `json:"alert"`
	Group       models.Severity    `json:"group"`
	Urgency     alerts.Urgency     `json:"urgency"`
	Description alerts.Description `json:"description"`
	ReceivedAt  time.Time          `json:"received_at"`
}

// Service fans alert events out to live subscribers through a bounded queue
// and a worker pool.
type Service struct {
	logger    *logging.Logger
	recorder  *diagnostics.Recorder
	escalator Escalator
	tasks     chan models.AlertTask
	workers   int
	ctx       context.Context
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	hub       *Hub
	now       func() time.Time
}

// New constructs a Service. escalator may be nil.
func New(logger *logging.Logger, recorder *diagnostics.Recorder, escalator Escalator, queueSize, workers int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	if workers < 1 {
		workers = 1
	}
	return &Service{
		logger:    logger,
		recorder:  recorder,
		escalator: escalator,
		tasks:     make(chan models.AlertTask, queueSize),
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
		hub:       NewHub(logger),
		now:       time.Now,
	}
}

// Start launches the worker pool
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop signals the workers to exit and closes every subscriber.
func (s *Service) Stop() {
	s.cancel()
	s.hub.CloseAll()
}

// Queue enqueues an alert without blocking. It reports false when the queue
// is full and the alert was dropped.
func (s *Service) Queue(a models.Alert) bool {
	task := models.AlertTask{RequestID: uuid.New().String(), Alert: a, ReceivedAt: s.now()}
	select {
	case s.tasks <- task:
		s.logger.Debugf("Queued alert %d: request_id=%s", a.AlertID, task.RequestID)
		return true
	default:
		s.logger.Errorf("Queue full, dropping alert %d: request_id=%s", a.AlertID, task.RequestID)
		return false
	}
}

// Subscribe attaches conn to a patient channel, or to every patient when
// patientID is AllPatients.
func (s *Service) Subscribe(patientID int64, conn *websocket.Conn) error {
	return s.hub.Add(patientID, conn)
}

// Subscribers counts the connections on a patient channel.
func (s *Service) Subscribers(patientID int64) int {
	return s.hub.Count(patientID)
}

func (s *Service) Unsubscribe(patientID int64, conn *websocket.Conn) {
	s.hub.Remove(patientID, conn)
}

// worker processes tasks until context is cancelled
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case task := <-s.tasks:
			s.handleTask(task)
		}
	}
}

func (s *Service) handleTask(task models.AlertTask) {
	a := task.Alert
	log := s.logger.WithRequest(task.RequestID)

	group := alerts.TierOf(a)
	if group == "" {
		s.recorder.DroppedAlert(s.ctx, diagnostics.SourceStream, a)
		return
	}

	ev := Event{
		Alert:       a,
		Group:       group,
		Urgency:     alerts.UrgencyOf(a.Severity),
		Description: alerts.Describe(a.AlertType, a.Severity, "", ""),
		ReceivedAt:  task.ReceivedAt,
	}
	message, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Failed to encode alert %d: %v", a.AlertID, err)
		return
	}
	if a.UserID != AllPatients {
		s.hub.Send(a.UserID, message)
	}
	s.hub.Send(AllPatients, message)
	log.Infof("Broadcast alert %d (%s) for patient %d", a.AlertID, group, a.UserID)

	if group == models.SeverityCritical && s.escalator != nil {
		if err := s.escalator.Escalate(s.ctx, a); err != nil {
			log.Errorf("Escalation of alert %d failed: %v", a.AlertID, err)
		}
	}
}
