package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/store"
)

const previewLength = 200

// stage names one unit of work and the agent that performs it.
type stage struct {
	name    string
	agent   string
	running string
	done    string
}

var (
	stageKnowledge = stage{"knowledge_base", "knowledge_agent", "Searching the knowledge base", "Knowledge base search finished"}
	stageWeb       = stage{"web_search", "web_search_agent", "Searching the web", "Web search finished"}
	stageSynthesis = stage{"synthesis", "synthesis_agent", "Synthesizing retrieved information", "Synthesis finished"}
	stageValidate  = stage{"validation", "validation_agent", "Validating information", "Validation finished"}
	stageAnswer    = stage{"answer", "answer_agent", "Composing the answer", "Answer ready"}
)

type phaseOutcome[T any] struct {
	value T
	err   error
}

// runPhase wraps one capability call: it publishes started/completed/failed
// events, races the call against the phase timeout, converts panics to
// errors and appends a StageResult to the run's log.
func runPhase[T any](ctx context.Context, c *Controller, run *runState, st stage, preview func(T) string, call func(context.Context) (T, error)) (T, error) {
	ctx, span := c.tracer.Start(ctx, "pipeline."+st.name, trace.WithAttributes(
		attribute.String("session.id", run.sessionID),
		attribute.String("pipeline.agent", st.agent),
	))
	defer span.End()

	startedAt := c.now()
	c.publish(run, run.event(progress.EventProgress, st.agent, progress.StatusStarted, st.running, nil))

	phaseCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.cfg.PhaseTimeout > 0 {
		phaseCtx, cancel = context.WithTimeout(ctx, c.cfg.PhaseTimeout)
	}
	defer cancel()

	done := make(chan phaseOutcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- phaseOutcome[T]{err: fmt.Errorf("%w: %v", ErrPhasePanicked, r)}
			}
		}()
		v, err := call(phaseCtx)
		done <- phaseOutcome[T]{value: v, err: err}
	}()

	var out phaseOutcome[T]
	select {
	case out = <-done:
	case <-phaseCtx.Done():
		out.err = phaseCtx.Err()
	}
	if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
		out.err = fmt.Errorf("%w after %s", ErrPhaseTimeout, c.cfg.PhaseTimeout)
	}

	res := store.StageResult{
		Stage:     st.name,
		Agent:     st.agent,
		StartedAt: startedAt,
		EndedAt:   c.now(),
	}

	if out.err != nil {
		res.Status = store.StageFailed
		res.Error = out.err.Error()
		run.record(res)

		span.RecordError(out.err)
		span.SetStatus(codes.Error, out.err.Error())
		c.logger.Warn("PIPELINE", "Stage failed", map[string]interface{}{
			"session_id": run.sessionID,
			"stage":      st.name,
			"error":      out.err.Error(),
		})
		c.publish(run, run.event(progress.EventProgress, st.agent, progress.StatusFailed, st.name+" failed: "+out.err.Error(), map[string]interface{}{
			"stage": st.name,
			"error": out.err.Error(),
		}))
		var zero T
		return zero, out.err
	}

	text := truncate(preview(out.value), previewLength)
	res.Status = store.StageCompleted
	res.Output = text
	run.record(res)

	c.logger.Info("PIPELINE", "Stage completed", map[string]interface{}{
		"session_id":  run.sessionID,
		"stage":       st.name,
		"duration_ms": res.EndedAt.Sub(res.StartedAt).Milliseconds(),
	})
	c.publish(run, run.event(progress.EventProgress, st.agent, progress.StatusCompleted, st.done, map[string]interface{}{
		"stage":   st.name,
		"preview": text,
	}))
	return out.value, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
