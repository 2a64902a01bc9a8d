package models

import "time"

// Alert carries its own severity tag, independent of any threshold
// recomputation on the patient's vitals. The tag is kept verbatim so that
// unrecognized values can be reported rather than silently normalized.
type Alert struct {
	AlertID      int64     `json:"alert_id"`
	UserID       int64     `json:"user_id"`
	Severity     string    `json:"severity"`
	AlertType    string    `json:"alert_type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

type AlertPage struct {
	Alerts   []Alert `json:"alerts"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// AlertTask is an alert event waiting in the live stream queue.
type AlertTask struct {
	RequestID  string
	Alert      Alert
	ReceivedAt time.Time
}
