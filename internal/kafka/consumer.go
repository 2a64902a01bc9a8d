package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"clinical-dashboard/internal/logging"
	"clinical-dashboard/internal/models"

	"github.com/segmentio/kafka-go"
)

var ErrInvalidMessage = errors.New("invalid alert message")

// Queuer accepts decoded alerts.
type Queuer interface {
	Queue(a models.Alert) bool
}

type Consumer struct {
	reader *kafka.Reader
	sink   Queuer
	logger *logging.Logger
}

func NewConsumer(brokers []string, topic, groupID string, sink Queuer, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: reader, sink: sink, logger: logger}
}

// Start reads alert events until ctx is cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}
			c.handle(msg)
		}
	}()
}

func (c *Consumer) handle(msg kafka.Message) {
	alert, err := Decode(msg.Value)
	if err != nil {
		c.logger.Errorf("Skipping message at offset %d: %v", msg.Offset, err)
		return
	}
	if !c.sink.Queue(alert) {
		return
	}
	c.logger.Debugf("Processed Kafka message: alert_id=%d", alert.AlertID)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

type alertMessage struct {
	AlertID      int64     `json:"alert_id"`
	UserID       int64     `json:"user_id"`
	Severity     string    `json:"severity"`
	AlertType    string    `json:"alert_type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// Decode parses an alert event. alert_id, user_id and severity are required.
// The severity tag is kept as sent.
func Decode(value []byte) (models.Alert, error) {
	var m alertMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return models.Alert{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if m.AlertID < 1 || m.UserID < 1 || strings.TrimSpace(m.Severity) == "" {
		return models.Alert{}, fmt.Errorf("%w: missing alert_id, user_id, or severity", ErrInvalidMessage)
	}
	return models.Alert{
		AlertID:      m.AlertID,
		UserID:       m.UserID,
		Severity:     m.Severity,
		AlertType:    m.AlertType,
		Title:        m.Title,
		Message:      m.Message,
		CreatedAt:    m.CreatedAt,
		Acknowledged: m.Acknowledged,
	}, nil
}
