package websocket

import (
	"sync"

	"info-seeker-be/internal/pkg/logger"
)

// Hub tracks the stream attached to each session so a session never has two
// consumers splitting its events.
type Hub struct {
	mu      sync.Mutex
	streams map[string]string
	logger  logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{streams: make(map[string]string), logger: log}
}

// Attach claims sessionID for a transport. The returned release must be
// called when the stream ends.
func (h *Hub) Attach(sessionID, transport string) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.streams[sessionID]; ok {
		h.logger.Warn("Hub", "Rejected second stream", map[string]interface{}{
			"session_id": sessionID,
			"attached":   current,
			"requested":  transport,
		})
		return nil, ErrStreamBusy
	}
	h.streams[sessionID] = transport
	h.logger.Info("Hub", "Stream attached", map[string]interface{}{"session_id": sessionID, "transport": transport})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.streams, sessionID)
			h.mu.Unlock()
			h.logger.Info("Hub", "Stream released", map[string]interface{}{"session_id": sessionID})
		})
	}, nil
}

func (h *Hub) ActiveStreams() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}
