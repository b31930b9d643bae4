package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/progress"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var errPumpStopped = errors.New("websocket write pump stopped")

// Client pumps one session's events to a websocket connection.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	done      chan struct{}
	logger    logger.ILogger
}

func newClient(sessionID string, conn *websocket.Conn, log logger.ILogger) *Client {
	return &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		logger:    log,
	}
}

// readPump only watches for the peer going away; clients send nothing.
func (c *Client) readPump(cancel context.CancelFunc) {
	defer cancel()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WS", "Unexpected close", map[string]interface{}{"session_id": c.SessionID, "error": err.Error()})
			}
			return
		}
	}
}

// writePump writes queued frames and pings until Send is closed.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream complete"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("WS", "Write failed", map[string]interface{}{"session_id": c.SessionID, "error": err.Error()})
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue hands one event to the write pump, failing when the pump is gone
// or the peer stopped reading.
func (c *Client) enqueue(ctx context.Context, ev progress.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case c.Send <- data:
		return nil
	case <-c.done:
		return errPumpStopped
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(writeWait):
		return context.DeadlineExceeded
	}
}
