package stream

import (
	"errors"
	"sync"
	"time"

	"clinical-dashboard/internal/logging"

	"github.com/gorilla/websocket"
)

// AllPatients is the channel that receives every patient's alerts.
const AllPatients int64 = 0

const (
	maxConnsPerChannel = 10
	writeTimeout       = 5 * time.Second
)

var ErrTooManyConnections = errors.New("too many connections for channel")

// Hub manages WebSocket connections per channel. A channel is a patient id,
// or AllPatients.
type Hub struct {
	connections map[int64]map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[int64]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers conn on a channel.
func (h *Hub) Add(channel int64, conn *websocket.Conn) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, exists := h.connections[channel]; !exists {
		h.connections[channel] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[channel]) >= maxConnsPerChannel {
		h.logger.Warnf("Max connections reached for channel %d", channel)
		return ErrTooManyConnections
	}
	h.connections[channel][conn] = true
	h.logger.Infof("Added WebSocket connection for channel %d (total: %d)", channel, len(h.connections[channel]))
	return nil
}

func (h *Hub) Remove(channel int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conns, exists := h.connections[channel]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, channel)
		}
		h.logger.Infof("Removed WebSocket connection for channel %d (remaining: %d)", channel, len(conns))
	}
}

// Count returns the open connections on a channel.
func (h *Hub) Count(channel int64) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections[channel])
}

// Send writes message to every connection of channel. Connections that fail
// are closed and dropped.
func (h *Hub) Send(channel int64, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, exists := h.connections[channel]
	if !exists {
		return
	}
	for conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Errorf("Failed to send WebSocket message to channel %d: %v", channel, err)
			_ = conn.Close()
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.connections, channel)
	}
}

// CloseAll closes every connection.
func (h *Hub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for channel, conns := range h.connections {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.connections, channel)
	}
}
