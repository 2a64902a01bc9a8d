package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clinical-dashboard/internal/alerts"
	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/dashboard"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"
	"clinical-dashboard/internal/roster"
	"clinical-dashboard/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	defaultAnomalyLimit = 50
	maxAnomalyLimit     = 500
)

type Handler struct {
	dashboard  *dashboard.Service
	classifier *classifier.Classifier
	recorder   *diagnostics.Recorder
	stream     *stream.Service
	logger     *logging.Logger
	upgrader   websocket.Upgrader
}

// NewHandler wires the HTTP handlers. stream may be nil, in which case the
// live alert feed answers 503.
func NewHandler(dash *dashboard.Service, c *classifier.Classifier, recorder *diagnostics.Recorder, st *stream.Service, logger *logging.Logger) *Handler {
	return &Handler{
		dashboard:  dash,
		classifier: c,
		recorder:   recorder,
		stream:     st,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	matchID, _ := strconv.ParseBool(c.Query("match_id"))
	q := roster.Query{
		Search:  c.Query("search"),
		Sort:    roster.ParseSortKey(c.Query("sort")),
		Risk:    c.Query("risk"),
		MatchID: matchID,
	}
	c.JSON(http.StatusOK, h.dashboard.Roster(c.Request.Context(), q))
}

func (h *Handler) GetPatient(c *gin.Context) {
	rng := dashboard.ParseTimeRange(c.Query("range"))

	view := h.dashboard.NewView()
	defer view.Close()

	state, err := view.Load(c.Request.Context(), c.Param("id"), rng)
	switch {
	case errors.Is(err, dashboard.ErrInvalidPatientID):
		h.logger.Errorf("Invalid patient id %q: %v", c.Param("id"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient id"})
		return
	case err != nil:
		h.logger.Errorf("Failed to load patient %s: %v", c.Param("id"), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
		return
	}

	if state.State == dashboard.StateNotFound {
		c.JSON(http.StatusNotFound, state)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Overview(c.Request.Context()))
}

func (h *Handler) GetGroupedAlerts(c *gin.Context) {
	groups, stats, err := h.dashboard.GroupedAlerts(c.Request.Context())
	state := dashboard.CollectionReady
	if err != nil {
		h.logger.Errorf("Failed to load recent alerts: %v", err)
		state = dashboard.CollectionUnavailable
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  state,
		"groups": groups,
		"stats":  stats,
		"banner": alerts.CriticalBanner(len(groups.Critical)),
	})
}

type classifyRequest struct {
	PatientID int64                 `json:"patient_id"`
	Readings  []models.VitalReading `json:"readings" binding:"required,min=1"`
}

type classifyResponse struct {
	Readings []classifier.ReadingStatus `json:"readings"`
	Latest   classifier.ReadingStatus   `json:"latest"`
}

// ClassifyVitals classifies a series of readings. Readings must be in
// chronological order.
func (h *Handler) ClassifyVitals(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request body for classification: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var series models.VitalSeries
	for _, r := range req.Readings {
		next, err := series.Append(r)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		series = next
	}

	resp := classifyResponse{Readings: make([]classifier.ReadingStatus, 0, len(series))}
	for _, r := range series {
		status := h.classifier.Reading(r)
		for _, a := range status.Anomalies() {
			h.recorder.Anomaly(c.Request.Context(), req.PatientID, a)
		}
		resp.Readings = append(resp.Readings, status)
	}
	resp.Latest = resp.Readings[len(resp.Readings)-1]
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ClassifyRisk(c *gin.Context) {
	res := h.classifier.RiskLevel(c.Param("level"))
	h.recorder.ReportResult(c.Request.Context(), 0, res)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListAnomalies(c *gin.Context) {
	limit := defaultAnomalyLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = min(n, maxAnomalyLimit)
	}

	list, err := h.recorder.Recent(c.Request.Context(), limit)
	if errors.Is(err, diagnostics.ErrNoStore) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Diagnostics store not configured"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to list diagnostics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list diagnostics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": list})
}

// StreamAlerts upgrades to a WebSocket and pushes live alerts for one
// patient, or for every patient when patient_id is omitted.
func (h *Handler) StreamAlerts(c *gin.Context) {
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live alert stream not configured"})
		return
	}

	channel := stream.AllPatients
	if raw := c.Query("patient_id"); raw != "" {
		id, err := dashboard.ParsePatientID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient_id"})
			return
		}
		channel = id
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	if err := h.stream.Subscribe(channel, conn); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()), time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer h.stream.Unsubscribe(channel, conn)

	// Drain client frames until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
