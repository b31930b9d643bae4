package progress

import "time"

// EventType is the closed set of event kinds delivered to a consumer.
type EventType string

const (
	EventProgress    EventType = "progress_update"
	EventFinalResult EventType = "final_result"
	EventError       EventType = "error"
	EventHeartbeat   EventType = "heartbeat"
)

// IsTerminal reports whether the event ends a session's stream.
func (t EventType) IsTerminal() bool {
	switch t {
	case EventFinalResult, EventError:
		return true
	case EventProgress, EventHeartbeat:
		return false
	default:
		return false
	}
}

// Status is the lifecycle or informational status carried by an event.
type Status string

const (
	StatusStarted    Status = "started"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusError      Status = "error"
	StatusProcessing Status = "processing"
	StatusReasoning  Status = "reasoning"
	StatusStreaming  Status = "streaming"
	StatusAlive      Status = "alive"
)

// Event is a single status update for one session.
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Agent     string                 `json:"agent"`
	Status    Status                 `json:"status"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Heartbeat builds the keepalive event a transport emits after a run of empty polls.
func Heartbeat(sessionID string, at time.Time) Event {
	return Event{
		Type:      EventHeartbeat,
		SessionID: sessionID,
		Agent:     "stream",
		Status:    StatusAlive,
		Message:   "heartbeat",
		Timestamp: at.UTC(),
	}
}
