package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"info-seeker-be/pkg/events"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.SEARCH_COMPLETED", Subject(events.TypeSearchCompleted))
	assert.Equal(t, "events.SEARCH_FAILED", Subject(events.TypeSearchFailed))
}

func TestOccurredAt(t *testing.T) {
	got := occurredAt(map[string]interface{}{"occurred_at": "2025-03-01T10:00:00Z"})
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), got.UTC())

	before := time.Now()
	assert.False(t, occurredAt(map[string]interface{}{"occurred_at": 12}).Before(before))
}
