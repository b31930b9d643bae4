package pipeline

import (
	"sync"
	"time"

	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/store"
)

// runState is built fresh for every Run call and passed to every phase. It
// is the only mutable state a run touches.
type runState struct {
	sessionID string
	query     string
	options   Options
	started   time.Time

	mu      sync.Mutex
	session *store.Session
	agents  []string
}

func newRunState(sessionID, query string, opts Options, now time.Time) *runState {
	return &runState{
		sessionID: sessionID,
		query:     query,
		options:   opts,
		started:   now,
		session: &store.Session{
			ID:        sessionID,
			Query:     query,
			StartedAt: now,
			Status:    store.SessionRunning,
		},
	}
}

func (r *runState) record(res store.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.StageLog = append(r.session.StageLog, res)
	if res.Status == store.StageCompleted {
		r.agents = append(r.agents, res.Agent)
	}
}

func (r *runState) setLanguage(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.DetectedLanguage = code
}

func (r *runState) finish(status store.SessionStatus, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session.Status = status
	r.session.CompletedAt = &at
}

func (r *runState) snapshot() *store.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Clone()
}

func (r *runState) agentsUsed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.agents...)
}

func (r *runState) event(typ progress.EventType, agent string, status progress.Status, message string, details map[string]interface{}) progress.Event {
	return progress.Event{
		Type:      typ,
		SessionID: r.sessionID,
		Agent:     agent,
		Status:    status,
		Message:   message,
		Details:   details,
	}
}
