package progress

import (
	"sync"
	"time"
)

// Config controls throttling and the per-session memory bound.
type Config struct {
	// MinInterval is the minimum spacing between accepted chatter events.
	MinInterval time.Duration
	// AlwaysPass lists statuses that bypass throttling.
	AlwaysPass []Status
	// MaxQueue caps queued events per session; zero means unbounded.
	MaxQueue int
}

// DefaultConfig returns the production throttle settings.
func DefaultConfig() Config {
	return Config{
		MinInterval: 500 * time.Millisecond,
		AlwaysPass:  []Status{StatusStarted, StatusCompleted, StatusFailed, StatusError},
		MaxQueue:    1000,
	}
}

type mailbox struct {
	mu          sync.Mutex
	queue       []Event
	lastPublish time.Time
	hasLast     bool
}

// Bus delivers events for each session to a single consumer.
// Publish and Poll never block on the consumer.
type Bus struct {
	cfg        Config
	alwaysPass map[Status]struct{}
	now        func() time.Time

	mu        sync.RWMutex
	mailboxes map[string]*mailbox
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock replaces the time source used for throttling and timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBus creates an empty bus.
func NewBus(cfg Config, opts ...Option) *Bus {
	pass := make(map[Status]struct{}, len(cfg.AlwaysPass))
	for _, s := range cfg.AlwaysPass {
		pass[s] = struct{}{}
	}
	b := &Bus{
		cfg:        cfg,
		alwaysPass: pass,
		now:        time.Now,
		mailboxes:  make(map[string]*mailbox),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Connect creates the session's queue. Connecting an already connected
// session keeps its queue.
func (b *Bus) Connect(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.mailboxes[sessionID]; !ok {
		b.mailboxes[sessionID] = &mailbox{}
	}
}

// Disconnect discards the session's queue and anything still in it.
func (b *Bus) Disconnect(sessionID string) {
	b.mu.Lock()
	delete(b.mailboxes, sessionID)
	b.mu.Unlock()
}

// IsConnected reports whether a consumer holds a queue for the session.
func (b *Bus) IsConnected(sessionID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.mailboxes[sessionID]
	return ok
}

// ActiveSessions returns the number of connected sessions.
func (b *Bus) ActiveSessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.mailboxes)
}

// Publish enqueues ev for the session and reports whether it was accepted.
// Events for unconnected sessions and throttled chatter are dropped. Chatter
// is throttled when any publish for the session happened less than
// MinInterval ago.
func (b *Bus) Publish(sessionID string, ev Event) bool {
	b.mu.RLock()
	box, ok := b.mailboxes[sessionID]
	b.mu.RUnlock()
	if !ok {
		return false
	}

	now := b.now()
	_, pass := b.alwaysPass[ev.Status]

	box.mu.Lock()
	defer box.mu.Unlock()

	// Every publish call moves the window, dropped chatter included.
	throttled := box.hasLast && now.Sub(box.lastPublish) < b.cfg.MinInterval
	box.lastPublish = now
	box.hasLast = true

	if !pass {
		if throttled {
			return false
		}
		if b.cfg.MaxQueue > 0 && len(box.queue) >= b.cfg.MaxQueue {
			return false
		}
	}

	ev.SessionID = sessionID
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now.UTC()
	}
	box.queue = append(box.queue, ev)
	return true
}

// Poll returns the oldest queued event, or false when there is none.
func (b *Bus) Poll(sessionID string) (Event, bool) {
	b.mu.RLock()
	box, ok := b.mailboxes[sessionID]
	b.mu.RUnlock()
	if !ok {
		return Event{}, false
	}

	box.mu.Lock()
	defer box.mu.Unlock()
	if len(box.queue) == 0 {
		return Event{}, false
	}
	ev := box.queue[0]
	box.queue[0] = Event{}
	box.queue = box.queue[1:]
	if len(box.queue) == 0 {
		box.queue = nil
	}
	return ev, true
}

// Pending returns the number of queued events for the session.
func (b *Bus) Pending(sessionID string) int {
	b.mu.RLock()
	box, ok := b.mailboxes[sessionID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	box.mu.Lock()
	defer box.mu.Unlock()
	return len(box.queue)
}
