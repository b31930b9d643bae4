package contract

import (
	"context"
	"errors"

	"info-seeker-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps the latest snapshot of live sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
