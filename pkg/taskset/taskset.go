// Package taskset runs background work on a bounded worker pool and keeps
// count of it, so every submitted task is accounted for at shutdown.
package taskset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"info-seeker-be/internal/pkg/logger"
)

var (
	ErrClosed       = errors.New("task set closed")
	ErrDrainTimeout = errors.New("task set drain timed out")
)

type Set struct {
	name    string
	pool    *ants.Pool
	logger  logger.ILogger
	wg      sync.WaitGroup
	pending atomic.Int64

	// mu orders wg.Add in Submit before wg.Wait in Drain.
	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a set backed by a pool of size workers. Submit blocks while all
// workers are busy.
func New(name string, size int, log logger.ILogger) (*Set, error) {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", name, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Set{name: name, pool: pool, logger: log, ctx: ctx, cancel: cancel}, nil
}

// Submit schedules task. The task's context is cancelled only when Drain
// gives up waiting.
func (s *Set) Submit(task func(ctx context.Context)) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	s.wg.Add(1)
	s.pending.Add(1)
	s.mu.RUnlock()

	err := s.pool.Submit(func() {
		defer s.wg.Done()
		defer s.pending.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("TASKSET", "Task panicked", map[string]interface{}{
					"set":   s.name,
					"panic": fmt.Sprint(r),
				})
			}
		}()
		task(s.ctx)
	})
	if err != nil {
		s.wg.Done()
		s.pending.Add(-1)
		return fmt.Errorf("submit to %s: %w", s.name, err)
	}
	return nil
}

// Pending is the number of submitted tasks that have not finished.
func (s *Set) Pending() int {
	return int(s.pending.Load())
}

// Drain stops accepting work and waits for every submitted task. If ctx
// expires first, running tasks are cancelled and ErrDrainTimeout is returned.
func (s *Set) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	defer s.pool.Release()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("TASKSET", "Drain timed out", map[string]interface{}{
			"set":     s.name,
			"pending": s.Pending(),
		})
		return ErrDrainTimeout
	}
}
