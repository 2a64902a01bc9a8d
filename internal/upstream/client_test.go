package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinical-dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, Token: "secret"}, logging.NewNop())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetUserByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(w, map[string]interface{}{"user_id": 42, "full_name": "Robert Anderson", "age": 68, "gender": "male"})
	})

	p, err := c.GetUserByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "Robert Anderson", p.FullName)
	assert.Equal(t, 68, p.Age)
}

func TestGetLatestVitalSigns(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vitals/user/7/latest", r.URL.Path)
		writeJSON(w, map[string]interface{}{
			"heart_rate":     112,
			"spo2":           93.5,
			"blood_pressure": map[string]float64{"systolic": 142, "diastolic": 86},
			"source_device":  "Fitbit Charge 6",
			"timestamp":      "2026-03-01T10:00:00Z",
		})
	})

	v, err := c.GetLatestVitalSigns(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(112), v.HeartRate)
	assert.Equal(t, 93.5, v.SpO2)
	assert.Equal(t, float64(142), v.Systolic())
	assert.Equal(t, "Fitbit Charge 6", v.SourceDevice)
}

func TestPagingQueries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/alerts/user/3":
			assert.Equal(t, "1", q.Get("page"))
			assert.Equal(t, "5", q.Get("per_page"))
			writeJSON(w, map[string]interface{}{"alerts": []map[string]interface{}{{"alert_id": 1, "severity": "critical"}}})
		case "/activities/user/3":
			assert.Equal(t, "5", q.Get("limit"))
			assert.Equal(t, "0", q.Get("offset"))
			writeJSON(w, map[string]interface{}{"activities": []interface{}{}})
		case "/vitals/user/3/history":
			assert.Equal(t, "30", q.Get("days"))
			assert.Equal(t, "100", q.Get("per_page"))
			writeJSON(w, map[string]interface{}{"vitals": []interface{}{}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	alerts, err := c.GetAlerts(ctx, 3, 1, 5)
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, "critical", alerts.Alerts[0].Severity)

	_, err = c.GetActivities(ctx, 3, 5, 0)
	require.NoError(t, err)

	_, err = c.GetVitalSignsHistory(ctx, 3, 30, 1, 100)
	require.NoError(t, err)
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	_, err := c.GetUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyBodyIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})

	_, err := c.GetUserByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.GetLatestVitalSigns(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetLatestRecommendation(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListPatients(ctx, 1, 50)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.Canceled)
}
