package service

import (
	"context"
	"errors"
	"sync"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/repository/specification"
	"info-seeker-be/pkg/events"
	"info-seeker-be/pkg/pipeline"
)

type runCall struct {
	Query     string
	SessionID string
	Options   pipeline.Options
	CtxErr    error
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []runCall
	result *pipeline.Result
	err    error
	done   chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{done: make(chan struct{}, 8)}
}

func (f *fakeRunner) Run(ctx context.Context, query, sessionID string, opts pipeline.Options) (*pipeline.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, runCall{Query: query, SessionID: sessionID, Options: opts, CtxErr: ctx.Err()})
	f.mu.Unlock()
	f.done <- struct{}{}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &pipeline.Result{SessionID: sessionID, Query: query, Status: pipeline.StatusSuccess}, nil
}

func (f *fakeRunner) Calls() []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runCall(nil), f.calls...)
}

type inlineSubmitter struct{}

func (inlineSubmitter) Submit(task func(ctx context.Context)) error {
	task(context.Background())
	return nil
}

type closedSubmitter struct{}

func (closedSubmitter) Submit(func(ctx context.Context)) error {
	return errors.New("task set closed")
}

type fakeWorkflowRepo struct {
	mu       sync.Mutex
	rows     map[string]*entity.WorkflowSession
	upserted []*entity.WorkflowSession
	err      error
	specs    []specification.Specification
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{rows: map[string]*entity.WorkflowSession{}}
}

func (f *fakeWorkflowRepo) Upsert(_ context.Context, s *entity.WorkflowSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, s)
	f.rows[s.SessionId] = s
	return nil
}

func (f *fakeWorkflowRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.WorkflowSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, spec := range specs {
		if by, ok := spec.(specification.BySessionID); ok {
			return f.rows[by.SessionID], nil
		}
	}
	return nil, nil
}

func (f *fakeWorkflowRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.WorkflowSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.specs = specs
	out := make([]*entity.WorkflowSession, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeWorkflowRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (f *fakeEventPublisher) Publish(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}
