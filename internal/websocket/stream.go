// Package websocket delivers a session's progress events to one client over
// a websocket or server-sent events, polling the progress bus.
package websocket

import (
	"context"
	"errors"
	"time"

	"info-seeker-be/pkg/progress"
)

var ErrStreamBusy = errors.New("session already has a stream consumer")

// Source is the consumer side of the progress bus.
type Source interface {
	Connect(sessionID string)
	Disconnect(sessionID string)
	Poll(sessionID string) (progress.Event, bool)
}

type StreamConfig struct {
	PollInterval time.Duration
	// HeartbeatEvery is the number of consecutive empty polls before a
	// heartbeat is sent. Zero disables heartbeats.
	HeartbeatEvery int
}

func DefaultStreamConfig() StreamConfig {
	return StreamConfig{PollInterval: 100 * time.Millisecond, HeartbeatEvery: 300}
}

// Stream forwards events for sessionID to send until a terminal event was
// sent, ctx is done or send fails. The session queue is discarded on return.
func Stream(ctx context.Context, src Source, sessionID string, cfg StreamConfig, send func(progress.Event) error) error {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultStreamConfig().PollInterval
	}

	src.Connect(sessionID)
	defer src.Disconnect(sessionID)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	empty := 0
	for {
		delivered := false
		for {
			ev, ok := src.Poll(sessionID)
			if !ok {
				break
			}
			delivered = true
			if err := send(ev); err != nil {
				return err
			}
			if ev.Type.IsTerminal() {
				return nil
			}
		}

		if delivered {
			empty = 0
		} else {
			empty++
			if cfg.HeartbeatEvery > 0 && empty >= cfg.HeartbeatEvery {
				empty = 0
				if err := send(progress.Heartbeat(sessionID, time.Now())); err != nil {
					return err
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
