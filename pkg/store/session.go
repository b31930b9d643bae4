package store

import "time"

type SessionStatus string

const (
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

type StageStatus string

const (
	StageStarted   StageStatus = "started"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageResult records one phase or branch execution. It is never modified
// after being appended to a session log.
type StageResult struct {
	Stage     string      `json:"stage"`
	Agent     string      `json:"agent"`
	Status    StageStatus `json:"status"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`
	Output    string      `json:"output,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Session is the state of one search run.
type Session struct {
	ID               string        `json:"id"`
	Query            string        `json:"query"`
	StartedAt        time.Time     `json:"started_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	DetectedLanguage string        `json:"detected_language"`
	Status           SessionStatus `json:"status"`
	StageLog         []StageResult `json:"stage_log"`
}

// Clone returns a copy safe to hand to another goroutine.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.StageLog = append([]StageResult(nil), s.StageLog...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
