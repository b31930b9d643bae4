package pipeline

import (
	"context"
	"time"

	"info-seeker-be/pkg/store"
)

const WorkflowName = "info_seeker_search"

// AuditRecord is persisted once per run, successful or not.
type AuditRecord struct {
	SessionID    string
	WorkflowName string
	Status       store.SessionStatus
	StartedAt    time.Time
	CompletedAt  time.Time
	Metadata     map[string]interface{}
	Result       *Result
	Error        string
}

type AuditSink interface {
	RecordRun(ctx context.Context, rec AuditRecord) error
}

// SessionStore keeps the latest snapshot of each session.
type SessionStore interface {
	Save(ctx context.Context, s *store.Session) error
}

// Submitter schedules background work. *taskset.Set satisfies it.
type Submitter interface {
	Submit(task func(ctx context.Context)) error
}
