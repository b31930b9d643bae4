package contract

import (
	"context"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/repository/specification"
)

type WorkflowSessionRepository interface {
	// Upsert inserts the row or overwrites the one with the same session id.
	Upsert(ctx context.Context, session *entity.WorkflowSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
