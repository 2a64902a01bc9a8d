package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"clinical-dashboard/internal/classifier"
	"clinical-dashboard/internal/dashboard"
	"clinical-dashboard/internal/diagnostics"
	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"
	"clinical-dashboard/internal/stream"
	"clinical-dashboard/internal/upstream/upstreamtest"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	saved []models.Diagnostic
}

func (m *memStore) SaveDiagnostic(_ context.Context, d models.Diagnostic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, d)
	return nil
}

func (m *memStore) ListDiagnostics(_ context.Context, limit int) ([]models.Diagnostic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit < len(m.saved) {
		return append([]models.Diagnostic(nil), m.saved[:limit]...), nil
	}
	return append([]models.Diagnostic(nil), m.saved...), nil
}

type testEnv struct {
	router *gin.Engine
	fake   *upstreamtest.Fake
	store  *memStore
}

func newEnv(t *testing.T, withStore bool, st *stream.Service) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := classifier.New(classifier.DefaultThresholds())
	require.NoError(t, err)

	fake := upstreamtest.New()
	var store *memStore
	var recorder *diagnostics.Recorder
	if withStore {
		store = &memStore{}
		recorder = diagnostics.New(logging.NewNop(), store)
	} else {
		recorder = diagnostics.New(logging.NewNop(), nil)
	}
	dash := dashboard.NewService(fake, c, recorder, logging.NewNop())
	h := NewHandler(dash, c, recorder, st, logging.NewNop())
	return testEnv{router: NewRouter(logging.NewNop(), "/api/v1", h), fake: fake, store: store}
}

func (e testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndRequestID(t *testing.T) {
	e := newEnv(t, false, nil)
	w := e.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestGetPatientInvalidID(t *testing.T) {
	e := newEnv(t, false, nil)
	w := e.do(http.MethodGet, "/api/v1/patients/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid patient id", decode(t, w)["error"])
	assert.Zero(t, e.fake.Calls("GetUserByID"))
}

func TestGetPatientNotFound(t *testing.T) {
	e := newEnv(t, false, nil)
	w := e.do(http.MethodGet, "/api/v1/patients/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "not_found", body["state"])
	assert.Equal(t, dashboard.NotFoundMessage, body["message"])
}

func TestGetPatientReady(t *testing.T) {
	e := newEnv(t, false, nil)
	e.fake.Users[5] = models.Patient{ID: 5, FullName: "Ana Silva", Age: 54, Gender: "female"}
	e.fake.Vitals[5] = models.VitalReading{HeartRate: 72, SpO2: 98, Timestamp: time.Now().Add(-time.Minute)}

	w := e.do(http.MethodGet, "/api/v1/patients/5?range=2weeks", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ready", body["state"])
	patient := body["patient"].(map[string]interface{})
	assert.Equal(t, "2weeks", patient["range"])
	assert.Equal(t, []int{14, 1, 100}, e.fake.Args("GetVitalSignsHistory"))
}

func TestListPatients(t *testing.T) {
	e := newEnv(t, false, nil)
	e.fake.Patients = []models.PatientSummary{
		{ID: 11, Name: "Carla", HealthScore: 40, RiskLevel: "high"},
		{ID: 12, Name: "Bruno", HealthScore: 90, RiskLevel: "low"},
	}

	w := e.do(http.MethodGet, "/api/v1/patients?sort=healthScore", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	patients := body["patients"].([]interface{})
	require.Len(t, patients, 2)
	assert.Equal(t, "Bruno", patients[0].(map[string]interface{})["name"])

	w = e.do(http.MethodGet, "/api/v1/patients?search=11&match_id=true", "")
	patients = decode(t, w)["patients"].([]interface{})
	require.Len(t, patients, 1)
	assert.Equal(t, "critical", patients[0].(map[string]interface{})["status"])
}

func TestOverviewUnavailableIsOK(t *testing.T) {
	e := newEnv(t, false, nil)
	e.fake.Fail("ListPatients", assert.AnError)

	w := e.do(http.MethodGet, "/api/v1/overview", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unavailable", decode(t, w)["state"])
}

func TestGroupedAlerts(t *testing.T) {
	e := newEnv(t, true, nil)
	e.fake.RecentAlerts = []models.Alert{
		{AlertID: 1, Severity: "critical"},
		{AlertID: 2, Severity: "critical"},
		{AlertID: 3, Severity: "weird"},
	}

	w := e.do(http.MethodGet, "/api/v1/alerts/grouped", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "2 critical alerts require immediate attention", body["banner"])
	groups := body["groups"].(map[string]interface{})
	assert.Len(t, groups["critical"], 2)
	assert.NotContains(t, groups, "Dropped")
	assert.Len(t, e.store.saved, 1)
}

func TestClassifyVitals(t *testing.T) {
	e := newEnv(t, true, nil)
	body := `{"patient_id": 9, "readings": [
		{"heart_rate": 80, "spo2": 97, "timestamp": "2026-05-04T10:00:00Z"},
		{"heart_rate": 135, "spo2": 101, "blood_pressure": {"systolic": 120, "diastolic": 80}, "timestamp": "2026-05-04T10:05:00Z"}
	]}`

	w := e.do(http.MethodPost, "/api/v1/classify/vitals", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp classifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Readings, 2)
	assert.Equal(t, models.SeverityStable, resp.Readings[0].Overall)
	assert.Equal(t, models.SeverityCritical, resp.Latest.HeartRate.Severity)
	require.NotNil(t, resp.Latest.SpO2.Anomaly)
	require.Len(t, e.store.saved, 1)
	assert.Equal(t, int64(9), e.store.saved[0].PatientID)
}

func TestClassifyVitalsRejectsOutOfOrder(t *testing.T) {
	e := newEnv(t, false, nil)
	body := `{"readings": [
		{"heart_rate": 80, "spo2": 97, "timestamp": "2026-05-04T10:05:00Z"},
		{"heart_rate": 81, "spo2": 97, "timestamp": "2026-05-04T10:00:00Z"}
	]}`
	w := e.do(http.MethodPost, "/api/v1/classify/vitals", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/v1/classify/vitals", `{"readings": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassifyRisk(t *testing.T) {
	e := newEnv(t, true, nil)

	w := e.do(http.MethodGet, "/api/v1/classify/risk/HIGH", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "critical", decode(t, w)["severity"])
	assert.Empty(t, e.store.saved)

	w = e.do(http.MethodGet, "/api/v1/classify/risk/extreme", "")
	body := decode(t, w)
	assert.Equal(t, "stable", body["severity"])
	assert.NotNil(t, body["anomaly"])
	assert.Len(t, e.store.saved, 1)
}

func TestListAnomalies(t *testing.T) {
	e := newEnv(t, false, nil)
	w := e.do(http.MethodGet, "/api/v1/anomalies", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	e = newEnv(t, true, nil)
	e.do(http.MethodGet, "/api/v1/classify/risk/unknown", "")
	e.do(http.MethodGet, "/api/v1/classify/risk/other", "")

	w = e.do(http.MethodGet, "/api/v1/anomalies?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["diagnostics"], 1)

	w = e.do(http.MethodGet, "/api/v1/anomalies?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamAlertsWithoutStream(t *testing.T) {
	e := newEnv(t, false, nil)
	w := e.do(http.MethodGet, "/api/v1/ws/alerts", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStreamAlerts(t *testing.T) {
	st := stream.New(logging.NewNop(), diagnostics.New(logging.NewNop(), nil), nil, 8, 1)
	var wg sync.WaitGroup
	st.Start(&wg)

	e := newEnv(t, false, st)
	srv := httptest.NewServer(e.router)
	t.Cleanup(func() {
		srv.Close()
		st.Stop()
		wg.Wait()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/alerts?patient_id=7"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return st.Subscribers(7) == 1 }, 2*time.Second, 5*time.Millisecond)
	require.True(t, st.Queue(models.Alert{AlertID: 77, UserID: 7, Severity: "warning"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev stream.Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, int64(77), ev.Alert.AlertID)
	assert.Equal(t, models.SeverityWarning, ev.Group)
}
