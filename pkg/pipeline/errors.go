package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrPhaseFailed       = errors.New("pipeline phase failed")
	ErrPhaseTimeout      = errors.New("pipeline phase timed out")
	ErrPhasePanicked     = errors.New("pipeline phase panicked")
	ErrEmptyQuery        = errors.New("query is empty")
	ErrEmptySessionID    = errors.New("session id is empty")
	ErrCapabilityMissing = errors.New("pipeline capability missing")
)

// PhaseError is returned by Run when a sequential phase fails. It matches
// ErrPhaseFailed and whatever the phase returned.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

func (e *PhaseError) Is(target error) bool {
	return target == ErrPhaseFailed
}
