package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotFound = errors.New("upstream resource not found")
	ErrUpstream = errors.New("upstream request failed")
)

// API is the contract the dashboard depends on. Every call honours ctx so
// that abandoning a view aborts its fetches.
type API interface {
	GetUserByID(ctx context.Context, id int64) (models.Patient, error)
	GetLatestVitalSigns(ctx context.Context, id int64) (models.VitalReading, error)
	GetLatestRiskAssessment(ctx context.Context, id int64) (models.RiskAssessment, error)
	GetLatestRecommendation(ctx context.Context, id int64) (models.Recommendation, error)
	GetAlerts(ctx context.Context, id int64, page, pageSize int) (models.AlertPage, error)
	GetActivities(ctx context.Context, id int64, limit, offset int) (models.ActivityPage, error)
	GetVitalSignsHistory(ctx context.Context, id int64, days, page, pageSize int) (models.VitalsHistory, error)
	ListPatients(ctx context.Context, page, pageSize int) (models.PatientPage, error)
	ListRecentAlerts(ctx context.Context, page, pageSize int) (models.AlertPage, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Token   string
}

// Client talks to the clinical REST API.
type Client struct {
	http   *resty.Client
	logger *logging.Logger
}

func New(cfg Config, logger *logging.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	}
	return &Client{http: httpClient, logger: logger}
}

func (c *Client) GetUserByID(ctx context.Context, id int64) (models.Patient, error) {
	var out models.Patient
	path := fmt.Sprintf("/users/%d", id)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return out, err
	}
	if out.ID == 0 {
		return out, fmt.Errorf("%w: GET %s: empty body", ErrNotFound, path)
	}
	return out, nil
}

func (c *Client) GetLatestVitalSigns(ctx context.Context, id int64) (models.VitalReading, error) {
	var out models.VitalReading
	path := fmt.Sprintf("/vitals/user/%d/latest", id)
	if err := c.get(ctx, path, nil, &out); err != nil {
		return out, err
	}
	if out.Timestamp.IsZero() {
		return out, fmt.Errorf("%w: GET %s: empty body", ErrNotFound, path)
	}
	return out, nil
}

func (c *Client) GetLatestRiskAssessment(ctx context.Context, id int64) (models.RiskAssessment, error) {
	var out models.RiskAssessment
	err := c.get(ctx, fmt.Sprintf("/risk-assessments/user/%d/latest", id), nil, &out)
	return out, err
}

func (c *Client) GetLatestRecommendation(ctx context.Context, id int64) (models.Recommendation, error) {
	var out models.Recommendation
	err := c.get(ctx, fmt.Sprintf("/recommendations/user/%d/latest", id), nil, &out)
	return out, err
}

func (c *Client) GetAlerts(ctx context.Context, id int64, page, pageSize int) (models.AlertPage, error) {
	var out models.AlertPage
	err := c.get(ctx, fmt.Sprintf("/alerts/user/%d", id), paging(page, pageSize), &out)
	return out, err
}

func (c *Client) GetActivities(ctx context.Context, id int64, limit, offset int) (models.ActivityPage, error) {
	var out models.ActivityPage
	q := map[string]string{
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
	err := c.get(ctx, fmt.Sprintf("/activities/user/%d", id), q, &out)
	return out, err
}

func (c *Client) GetVitalSignsHistory(ctx context.Context, id int64, days, page, pageSize int) (models.VitalsHistory, error) {
	var out models.VitalsHistory
	q := paging(page, pageSize)
	q["days"] = strconv.Itoa(days)
	err := c.get(ctx, fmt.Sprintf("/vitals/user/%d/history", id), q, &out)
	return out, err
}

func (c *Client) ListPatients(ctx context.Context, page, pageSize int) (models.PatientPage, error) {
	var out models.PatientPage
	err := c.get(ctx, "/patients", paging(page, pageSize), &out)
	return out, err
}

func (c *Client) ListRecentAlerts(ctx context.Context, page, pageSize int) (models.AlertPage, error) {
	var out models.AlertPage
	err := c.get(ctx, "/alerts", paging(page, pageSize), &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		Get(path)
	if err != nil {
		c.logger.Errorf("Upstream GET %s failed: %v", path, err)
		return fmt.Errorf("%w: GET %s: %w", ErrUpstream, path, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%w: GET %s", ErrNotFound, path)
	case resp.IsError():
		c.logger.Errorf("Upstream GET %s returned %d", path, resp.StatusCode())
		return fmt.Errorf("%w: GET %s returned %d", ErrUpstream, path, resp.StatusCode())
	}
	c.logger.Debugf("Upstream GET %s: %d in %v", path, resp.StatusCode(), resp.Time())
	return nil
}

func paging(page, pageSize int) map[string]string {
	return map[string]string{
		"page":     strconv.Itoa(page),
		"per_page": strconv.Itoa(pageSize),
	}
}
