package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/mapper"
	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/repository/specification"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const SearchTopic = "search.requested"

// Runner executes one search run. *pipeline.Controller satisfies it.
type Runner interface {
	Run(ctx context.Context, query, sessionID string, opts pipeline.Options) (*pipeline.Result, error)
}

// SessionBus is the part of the progress bus the services touch.
type SessionBus interface {
	Connect(sessionID string)
	Disconnect(sessionID string)
	Pending(sessionID string) int
}

type ISearchService interface {
	// Submit dispatches a run and returns before it starts.
	Submit(ctx context.Context, req *dto.SearchRequest) (*dto.SearchAcceptedResponse, error)
	// Search runs the pipeline and waits for the result.
	Search(ctx context.Context, req *dto.SearchRequest) (*pipeline.Result, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
}

type searchService struct {
	publisher message.Publisher
	topic     string
	runner    Runner
	bus       SessionBus
	sessions  contract.SessionRepository
	workflows contract.WorkflowSessionRepository
	mapper    *mapper.WorkflowSessionMapper
	logger    logger.ILogger
}

// NewSearchService wires the dispatch side. workflows may be nil when no
// database is configured.
func NewSearchService(
	publisher message.Publisher,
	topic string,
	runner Runner,
	bus SessionBus,
	sessions contract.SessionRepository,
	workflows contract.WorkflowSessionRepository,
	log logger.ILogger,
) ISearchService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &searchService{
		publisher: publisher,
		topic:     topic,
		runner:    runner,
		bus:       bus,
		sessions:  sessions,
		workflows: workflows,
		mapper:    mapper.NewWorkflowSessionMapper(),
		logger:    log,
	}
}

func sessionIDFor(req *dto.SearchRequest) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	return uuid.NewString()
}

func (s *searchService) Submit(ctx context.Context, req *dto.SearchRequest) (*dto.SearchAcceptedResponse, error) {
	sessionID := sessionIDFor(req)

	payload, err := json.Marshal(dto.SearchRunMessage{
		SessionID:   sessionID,
		Query:       req.Query,
		Options:     req.Options(),
		RequestedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal run message: %w", err)
	}

	// Queue events from the first one on, the stream may attach after the run starts.
	s.bus.Connect(sessionID)

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", sessionID)
	if err := s.publisher.Publish(s.topic, msg); err != nil {
		s.bus.Disconnect(sessionID)
		return nil, fmt.Errorf("dispatch search: %w", err)
	}

	s.logger.Info("SEARCH", "Search accepted", map[string]interface{}{
		"session_id": sessionID,
		"query_len":  len(req.Query),
	})

	return &dto.SearchAcceptedResponse{
		SessionID:    sessionID,
		Status:       "accepted",
		StreamURL:    "/api/v1/search/stream/" + sessionID,
		WebsocketURL: "/api/v1/search/ws/" + sessionID,
	}, nil
}

func (s *searchService) Search(ctx context.Context, req *dto.SearchRequest) (*pipeline.Result, error) {
	// The run outlives a dropped client connection.
	return s.runner.Run(context.WithoutCancel(ctx), req.Query, sessionIDFor(req), req.Options())
}

func (s *searchService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, contract.ErrSessionNotFound) {
		return nil, err
	}

	if s.workflows == nil {
		if session == nil {
			return nil, contract.ErrSessionNotFound
		}
		return &dto.SessionResponse{Session: session}, nil
	}

	row, err := s.workflows.FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		s.logger.Warn("SEARCH", "Workflow lookup failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}
	if session == nil && row == nil {
		return nil, contract.ErrSessionNotFound
	}
	if session == nil {
		session = s.mapper.ToSession(row)
	}

	res := &dto.SessionResponse{Session: session}
	if row != nil && session.Status == store.SessionCompleted && len(row.Result) > 0 {
		var result pipeline.Result
		if err := json.Unmarshal(row.Result, &result); err == nil {
			res.Result = &result
		}
	}
	return res, nil
}
