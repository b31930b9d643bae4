package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/pkg/serverutils"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/service"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"
)

type stubSearchService struct {
	lastReq *dto.SearchRequest
	runErr  error
}

func (s *stubSearchService) Submit(_ context.Context, req *dto.SearchRequest) (*dto.SearchAcceptedResponse, error) {
	s.lastReq = req
	return &dto.SearchAcceptedResponse{SessionID: "s1", Status: "accepted"}, nil
}

func (s *stubSearchService) Search(_ context.Context, req *dto.SearchRequest) (*pipeline.Result, error) {
	s.lastReq = req
	if s.runErr != nil {
		return nil, s.runErr
	}
	return &pipeline.Result{SessionID: "s1", Query: req.Query, Status: pipeline.StatusSuccess, Answer: "Try Fuunji."}, nil
}

func (s *stubSearchService) GetSession(_ context.Context, id string) (*dto.SessionResponse, error) {
	if id != "s1" {
		return nil, contract.ErrSessionNotFound
	}
	return &dto.SessionResponse{Session: &store.Session{ID: "s1", Status: store.SessionRunning}}, nil
}

type stubAudit struct {
	limit  int
	status string
}

func (s *stubAudit) RecordRun(context.Context, pipeline.AuditRecord) error { return nil }

func (s *stubAudit) Recent(_ context.Context, limit int, status string) ([]*entity.WorkflowSession, error) {
	s.limit, s.status = limit, status
	return []*entity.WorkflowSession{{SessionId: "s1", Status: "failed", StartedAt: time.Unix(0, 0), ErrorMessage: "boom"}}, nil
}

var _ service.IAuditService = (*stubAudit)(nil)

func newApp(svc service.ISearchService, audit service.IAuditService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSearchController(svc, audit).RegisterRoutes(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, serverutils.BaseResponse[json.RawMessage]) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out serverutils.BaseResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestSubmitReturnsAccepted(t *testing.T) {
	svc := &stubSearchService{}
	app := newApp(svc, &stubAudit{})

	code, out := doJSON(t, app, "POST", "/api/v1/search", `{"query":"best ramen","include_web":false}`)

	assert.Equal(t, fiber.StatusAccepted, code)
	assert.True(t, out.Success)
	var ack dto.SearchAcceptedResponse
	require.NoError(t, json.Unmarshal(out.Data, &ack))
	assert.Equal(t, "s1", ack.SessionID)
	assert.Equal(t, pipeline.Options{IncludeKB: true, IncludeWeb: false}, svc.lastReq.Options())
}

func TestSubmitValidatesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing query", `{"include_kb":true}`},
		{"malformed json", `{"query":`},
		{"session id with slash", `{"query":"x","session_id":"a/b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := doJSON(t, newApp(&stubSearchService{}, &stubAudit{}), "POST", "/api/v1/search", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, code)
			assert.False(t, out.Success)
		})
	}
}

func TestSearchSyncMapsPhaseFailure(t *testing.T) {
	svc := &stubSearchService{runErr: &pipeline.PhaseError{Phase: "synthesis", Err: errors.New("model offline")}}

	code, out := doJSON(t, newApp(svc, &stubAudit{}), "POST", "/api/v1/search/sync", `{"query":"ramen"}`)

	assert.Equal(t, fiber.StatusBadGateway, code)
	assert.Contains(t, out.Message, "synthesis")
}

func TestSearchSyncReturnsResult(t *testing.T) {
	code, out := doJSON(t, newApp(&stubSearchService{}, &stubAudit{}), "POST", "/api/v1/search/sync", `{"query":"ramen"}`)

	require.Equal(t, fiber.StatusOK, code)
	var res pipeline.Result
	require.NoError(t, json.Unmarshal(out.Data, &res))
	assert.Equal(t, "Try Fuunji.", res.Answer)
}

func TestGetSession(t *testing.T) {
	app := newApp(&stubSearchService{}, &stubAudit{})

	code, _ := doJSON(t, app, "GET", "/api/v1/search/session/s1", "")
	assert.Equal(t, fiber.StatusOK, code)

	code, out := doJSON(t, app, "GET", "/api/v1/search/session/unknown", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "session not found", out.Message)
}

func TestHistoryPassesFilters(t *testing.T) {
	audit := &stubAudit{}

	code, out := doJSON(t, newApp(&stubSearchService{}, audit), "GET", "/api/v1/search/history?limit=5&status=failed", "")

	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 5, audit.limit)
	assert.Equal(t, "failed", audit.status)
	var rows []dto.WorkflowSessionResponse
	require.NoError(t, json.Unmarshal(out.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "boom", rows[0].Error)
}
