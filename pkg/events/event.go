package events

import "time"

const (
	TypeSearchCompleted = "SEARCH_COMPLETED"
	TypeSearchFailed    = "SEARCH_FAILED"
)

// Event defines the contract for lifecycle events published on the bus.
type Event interface {
	// EventType returns the subject suffix, e.g. "SEARCH_COMPLETED".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// SearchFinished describes the end of one search run.
type SearchFinished struct {
	SessionID      string
	Query          string
	Failed         bool
	Error          string
	SourceCount    int
	Confidence     float64
	ElapsedSeconds float64
	OccurredAt     time.Time
}

func (e SearchFinished) EventType() string {
	if e.Failed {
		return TypeSearchFailed
	}
	return TypeSearchCompleted
}

func (e SearchFinished) Payload() map[string]interface{} {
	data := map[string]interface{}{
		"session_id":      e.SessionID,
		"query":           e.Query,
		"elapsed_seconds": e.ElapsedSeconds,
		"occurred_at":     e.OccurredAt.UTC().Format(time.RFC3339),
	}
	if e.Failed {
		data["error"] = e.Error
	} else {
		data["source_count"] = e.SourceCount
		data["confidence"] = e.Confidence
	}
	return data
}

func (e SearchFinished) Timestamp() time.Time {
	return e.OccurredAt
}
