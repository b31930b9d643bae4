package service

import (
	"context"
	"fmt"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/mapper"
	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/repository/specification"
	"info-seeker-be/pkg/events"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"
)

// EventPublisher sends lifecycle events off-process. *nats.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IAuditService interface {
	pipeline.AuditSink
	Recent(ctx context.Context, limit int, status string) ([]*entity.WorkflowSession, error)
}

type auditService struct {
	repo      contract.WorkflowSessionRepository
	publisher EventPublisher
	mapper    *mapper.WorkflowSessionMapper
	logger    logger.ILogger
}

// NewAuditService persists run records and announces them. Either
// dependency may be nil; the matching half is then skipped.
func NewAuditService(repo contract.WorkflowSessionRepository, publisher EventPublisher, log logger.ILogger) IAuditService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &auditService{
		repo:      repo,
		publisher: publisher,
		mapper:    mapper.NewWorkflowSessionMapper(),
		logger:    log,
	}
}

func (s *auditService) RecordRun(ctx context.Context, rec pipeline.AuditRecord) error {
	var persistErr error
	if s.repo != nil {
		row, err := s.mapper.FromAuditRecord(rec)
		if err != nil {
			return fmt.Errorf("map audit record: %w", err)
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			persistErr = fmt.Errorf("upsert workflow session: %w", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, finishedEvent(rec)); err != nil {
			s.logger.Warn("AUDIT", "Failed to publish lifecycle event", map[string]interface{}{
				"session_id": rec.SessionID,
				"error":      err.Error(),
			})
		}
	}

	if persistErr == nil {
		s.logger.Debug("AUDIT", "Run recorded", map[string]interface{}{
			"session_id": rec.SessionID,
			"status":     rec.Status,
		})
	}
	return persistErr
}

func finishedEvent(rec pipeline.AuditRecord) events.SearchFinished {
	ev := events.SearchFinished{
		SessionID:      rec.SessionID,
		Failed:         rec.Status != store.SessionCompleted,
		Error:          rec.Error,
		ElapsedSeconds: rec.CompletedAt.Sub(rec.StartedAt).Seconds(),
		OccurredAt:     rec.CompletedAt,
	}
	if q, ok := rec.Metadata["query"].(string); ok {
		ev.Query = q
	}
	if rec.Result != nil {
		ev.SourceCount = rec.Result.Metadata.SourceCount
		ev.Confidence = rec.Result.Scores.FinalConfidence
	}
	return ev
}

func (s *auditService) Recent(ctx context.Context, limit int, status string) ([]*entity.WorkflowSession, error) {
	if s.repo == nil {
		return []*entity.WorkflowSession{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	specs := []specification.Specification{
		specification.ByWorkflow{Name: pipeline.WorkflowName},
		specification.RecentFirst{},
		specification.Pagination{Limit: limit},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	return s.repo.FindAll(ctx, specs...)
}
