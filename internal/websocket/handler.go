package websocket

import (
	"context"
	"errors"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/progress"

	"github.com/gofiber/websocket/v2"
)

// ServeWs streams sessionID's events over c until the terminal event or the
// peer leaves. Leaving never cancels the search run itself.
func ServeWs(hub *Hub, src Source, c *websocket.Conn, sessionID string, cfg StreamConfig, log logger.ILogger) {
	release, err := hub.Attach(sessionID, "websocket")
	if err != nil {
		_ = c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		_ = c.Close()
		return
	}
	defer release()

	client := newClient(sessionID, c, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.writePump()
	go client.readPump(cancel)

	err = Stream(ctx, src, sessionID, cfg, func(ev progress.Event) error {
		return client.enqueue(ctx, ev)
	})
	close(client.Send)
	<-client.done
	_ = c.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("WS", "Stream ended early", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return
	}
	log.Debug("WS", "Stream finished", map[string]interface{}{"session_id": sessionID})
}
