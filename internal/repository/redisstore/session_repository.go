package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "info-seeker:session:"

// SessionRepository stores session snapshots as JSON strings so every API
// instance can answer status queries.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.rdb.Set(ctx, key(session.ID), data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*store.Session, error) {
	data, err := r.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, key(sessionID)).Err()
}
