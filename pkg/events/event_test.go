package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchFinishedType(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		event    SearchFinished
		wantType string
		wantKey  string
		noKey    string
	}{
		{
			name:     "completed",
			event:    SearchFinished{SessionID: "s1", SourceCount: 4, Confidence: 0.7, OccurredAt: at},
			wantType: TypeSearchCompleted,
			wantKey:  "confidence",
			noKey:    "error",
		},
		{
			name:     "failed",
			event:    SearchFinished{SessionID: "s1", Failed: true, Error: "synthesis failed", OccurredAt: at},
			wantType: TypeSearchFailed,
			wantKey:  "error",
			noKey:    "confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev Event = tt.event
			assert.Equal(t, tt.wantType, ev.EventType())
			assert.Equal(t, at, ev.Timestamp())
			assert.Equal(t, "s1", ev.Payload()["session_id"])
			assert.Contains(t, ev.Payload(), tt.wantKey)
			assert.NotContains(t, ev.Payload(), tt.noKey)
			assert.Equal(t, "2025-03-01T10:00:00Z", ev.Payload()["occurred_at"])
		})
	}
}
