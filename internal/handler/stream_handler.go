package handler

import (
	"context"
	"errors"
	"strings"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/internal/repository/contract"
	internalWS "info-seeker-be/internal/websocket"
	"info-seeker-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamSource is the progress bus as seen by the stream handler.
type StreamSource interface {
	internalWS.Source
	IsConnected(sessionID string) bool
}

// SessionLookup reads session snapshots.
type SessionLookup interface {
	Get(ctx context.Context, sessionID string) (*store.Session, error)
}

// StreamHandler serves the progress stream of one search session over SSE
// or websocket.
type StreamHandler struct {
	hub      *internalWS.Hub
	source   StreamSource
	sessions SessionLookup
	cfg      internalWS.StreamConfig
	logger   logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, source StreamSource, sessions SessionLookup, cfg internalWS.StreamConfig, log logger.ILogger) *StreamHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &StreamHandler{hub: hub, source: source, sessions: sessions, cfg: cfg, logger: log}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/v1/search")
	g.Get("/stream/:session_id", h.HandleSSE)
	g.Get("/ws/:session_id", h.HandleWebSocket)
}

func sessionParam(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("session_id"))
	if id == "" || len(id) > 64 {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}
	return id, nil
}

// streamable accepts sessions with a live queue, or a running snapshot whose
// stream was dropped and is being re-attached.
func (h *StreamHandler) streamable(ctx context.Context, sessionID string) error {
	if h.source.IsConnected(sessionID) {
		return nil
	}
	if h.sessions != nil {
		snap, err := h.sessions.Get(ctx, sessionID)
		switch {
		case err == nil && snap.Status == store.SessionRunning:
			return nil
		case err != nil && !errors.Is(err, contract.ErrSessionNotFound):
			return err
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "no active search for this session")
}

func (h *StreamHandler) HandleSSE(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}
	if err := h.streamable(c.UserContext(), sessionID); err != nil {
		return err
	}
	h.logger.Info("StreamHandler", "Starting SSE stream", map[string]interface{}{"session_id": sessionID})
	return internalWS.ServeSSE(c, h.hub, h.source, sessionID, h.cfg, h.logger)
}

func (h *StreamHandler) HandleWebSocket(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return err
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if err := h.streamable(c.UserContext(), sessionID); err != nil {
		return err
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("StreamHandler", "Starting WebSocket stream", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, h.source, conn, sessionID, h.cfg, h.logger)
	})(c)
}
