package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/progress"

	"github.com/gofiber/fiber/v2"
)

// WriteSSE writes ev as one server-sent events frame and flushes it. A flush
// error means the client is gone.
func WriteSSE(w *bufio.Writer, ev progress.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// ServeSSE streams sessionID's events as text/event-stream.
func ServeSSE(c *fiber.Ctx, hub *Hub, src Source, sessionID string, cfg StreamConfig, log logger.ILogger) error {
	release, err := hub.Attach(sessionID, "sse")
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer release()
		err := Stream(context.Background(), src, sessionID, cfg, func(ev progress.Event) error {
			return WriteSSE(w, ev)
		})
		if err != nil {
			log.Warn("SSE", "Stream ended early", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
			return
		}
		log.Debug("SSE", "Stream finished", map[string]interface{}{"session_id": sessionID})
	})
	return nil
}
