package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/sources"
	"info-seeker-be/pkg/store"
)

type retrieverFunc func(ctx context.Context, query string) (*Retrieval, error)

func (f retrieverFunc) Lookup(ctx context.Context, query string) (*Retrieval, error) {
	return f(ctx, query)
}

type synthesizerFunc func(ctx context.Context, in SynthesisInput) (string, error)

func (f synthesizerFunc) Combine(ctx context.Context, in SynthesisInput) (string, error) {
	return f(ctx, in)
}

type validatorFunc func(ctx context.Context, in ValidationInput) (*Validation, error)

func (f validatorFunc) Validate(ctx context.Context, in ValidationInput) (*Validation, error) {
	return f(ctx, in)
}

type composerFunc func(ctx context.Context, in AnswerInput) (string, error)

func (f composerFunc) Compose(ctx context.Context, in AnswerInput) (string, error) {
	return f(ctx, in)
}

const snippet = "a snippet long enough to survive aggregation"

func webSources(n int) []sources.Source {
	out := make([]sources.Source, n)
	for i := range out {
		out[i] = sources.Source{
			Title:   "web result",
			URL:     "https://web" + string(rune('a'+i)) + ".example/page",
			Snippet: snippet,
			Origin:  sources.OriginWeb,
			Score:   0.6,
		}
	}
	return out
}

func kbSources() []sources.Source {
	return []sources.Source{
		{Title: "Note 1", URL: "https://kb.example/notes/1", Snippet: snippet, Score: 0.9},
		{Title: "Note 2", URL: "https://kb.example/notes/2", Snippet: snippet, Score: 0.8},
	}
}

func okRetriever(text string, list []sources.Source) Retriever {
	return retrieverFunc(func(context.Context, string) (*Retrieval, error) {
		return &Retrieval{Text: text, Sources: list}, nil
	})
}

func failingRetriever(err error) Retriever {
	return retrieverFunc(func(context.Context, string) (*Retrieval, error) {
		return nil, err
	})
}

func blockingRetriever() Retriever {
	return retrieverFunc(func(ctx context.Context, _ string) (*Retrieval, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

// citingComposer lists every source URL it was given.
func citingComposer() Composer {
	return composerFunc(func(_ context.Context, in AnswerInput) (string, error) {
		var b strings.Builder
		b.WriteString("Answer for " + in.Query + "\n")
		for _, s := range in.Sources {
			b.WriteString("- " + s.URL + "\n")
		}
		return b.String(), nil
	})
}

func defaultCaps() Capabilities {
	return Capabilities{
		Knowledge: okRetriever("Internal notes about ramen.", kbSources()),
		Web:       okRetriever("Web results about ramen.", webSources(3)),
		Synthesizer: synthesizerFunc(func(_ context.Context, in SynthesisInput) (string, error) {
			return "synthesis of: " + in.Context, nil
		}),
		Validator: validatorFunc(func(context.Context, ValidationInput) (*Validation, error) {
			return &Validation{Report: "The information is verified and consistent."}, nil
		}),
		Composer: citingComposer(),
	}
}

type fixture struct {
	bus  *progress.Bus
	ctrl *Controller
}

func newFixture(t *testing.T, caps Capabilities, cfg Config, opts ...Option) *fixture {
	t.Helper()
	bus := progress.NewBus(progress.DefaultConfig())
	ctrl, err := NewController(caps, bus, scoring.NewEngine(scoring.DefaultConfig()), cfg, opts...)
	require.NoError(t, err)
	return &fixture{bus: bus, ctrl: ctrl}
}

func (f *fixture) events(sessionID string) []progress.Event {
	var out []progress.Event
	for {
		ev, ok := f.bus.Poll(sessionID)
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func countType(events []progress.Event, typ progress.EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestRunCompletesWithBothBranches(t *testing.T) {
	var seen SynthesisInput
	caps := defaultCaps()
	caps.Synthesizer = synthesizerFunc(func(_ context.Context, in SynthesisInput) (string, error) {
		seen = in
		return "synthesis", nil
	})
	f := newFixture(t, caps, DefaultConfig())
	f.bus.Connect("s1")

	res, err := f.ctrl.Run(context.Background(), "best ramen in tokyo", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Contains(t, seen.Context, headerKnowledge+"\n\nInternal notes about ramen.")
	assert.Contains(t, seen.Context, headerWeb+"\n\nWeb results about ramen.")
	assert.Equal(t, "best ramen in tokyo", seen.Query)

	assert.Equal(t, 5, res.Metadata.SourceCount)
	assert.Equal(t, Counts{KnowledgeBase: 2, Web: 3}, res.Metadata.SourcesByOrigin)
	assert.Equal(t, CoverageFull, res.Metadata.Coverage)
	assert.Empty(t, res.Metadata.BranchFailure)
	assert.ElementsMatch(t, []string{"knowledge_agent", "web_search_agent", "synthesis_agent", "validation_agent", "answer_agent"}, res.Metadata.AgentsUsed)
	assert.NotEmpty(t, res.Metadata.DetectedLanguage)
	assert.Len(t, res.StageLog, 5)

	for _, v := range []float64{res.Scores.BaseScore, res.Scores.FinalConfidence, res.Scores.QualityScore} {
		assert.GreaterOrEqual(t, v, 0.1)
		assert.LessOrEqual(t, v, 0.95)
	}

	events := f.events("s1")
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, progress.EventFinalResult, last.Type)
	assert.Same(t, res, last.Details["result"])
	assert.Equal(t, 1, countType(events, progress.EventFinalResult))
	assert.Zero(t, countType(events, progress.EventError))
}

// The knowledge base branch fails and the web branch carries the run.
func TestRunIsolatesBranchFailure(t *testing.T) {
	caps := defaultCaps()
	caps.Knowledge = failingRetriever(errors.New("vector store unavailable"))
	f := newFixture(t, caps, DefaultConfig())
	f.bus.Connect("s1")

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{"knowledge_base"}, res.Metadata.BranchFailure)
	assert.Equal(t, CoverageReduced, res.Metadata.Coverage)
	require.Len(t, res.Sources, 3)
	for _, s := range res.Sources {
		assert.Equal(t, sources.OriginWeb, s.Origin)
		assert.Contains(t, res.Answer, s.URL)
	}
	assert.NotContains(t, res.Answer, "kb.example")
	assert.NotContains(t, res.Metadata.AgentsUsed, "knowledge_agent")

	events := f.events("s1")
	var kbFailed bool
	for _, ev := range events {
		if ev.Agent == "knowledge_agent" && ev.Status == progress.StatusFailed {
			kbFailed = true
		}
	}
	assert.True(t, kbFailed)
	assert.Equal(t, progress.EventFinalResult, events[len(events)-1].Type)
}

// A validation failure aborts the run.
func TestRunAbortsOnPhaseFailure(t *testing.T) {
	composed := false
	caps := defaultCaps()
	caps.Validator = validatorFunc(func(context.Context, ValidationInput) (*Validation, error) {
		return nil, errors.New("validator exploded")
	})
	caps.Composer = composerFunc(func(context.Context, AnswerInput) (string, error) {
		composed = true
		return "", nil
	})
	f := newFixture(t, caps, DefaultConfig())
	f.bus.Connect("s1")

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPhaseFailed)
	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "validation", perr.Phase)
	assert.False(t, composed)

	events := f.events("s1")
	require.NotEmpty(t, events)
	assert.Equal(t, progress.EventError, events[len(events)-1].Type)
	assert.Zero(t, countType(events, progress.EventFinalResult))
}

func TestRunPhaseTimeoutIsFatal(t *testing.T) {
	caps := defaultCaps()
	caps.Synthesizer = synthesizerFunc(func(ctx context.Context, _ SynthesisInput) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	f := newFixture(t, caps, Config{PhaseTimeout: 20 * time.Millisecond, Sources: sources.DefaultPolicy()})
	f.bus.Connect("s1")

	_, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})

	assert.ErrorIs(t, err, ErrPhaseTimeout)
	assert.ErrorIs(t, err, ErrPhaseFailed)
}

func TestRunBranchTimeoutIsIsolated(t *testing.T) {
	caps := defaultCaps()
	caps.Web = blockingRetriever()
	f := newFixture(t, caps, Config{PhaseTimeout: 20 * time.Millisecond, Sources: sources.DefaultPolicy()})

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, res.Metadata.BranchFailure)
	assert.Equal(t, 2, res.Metadata.SourceCount)
}

func TestRunBranchPanicIsIsolated(t *testing.T) {
	caps := defaultCaps()
	caps.Knowledge = retrieverFunc(func(context.Context, string) (*Retrieval, error) {
		panic("nil map")
	})
	f := newFixture(t, caps, DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"knowledge_base"}, res.Metadata.BranchFailure)
}

func TestRunPhasePanicIsFatal(t *testing.T) {
	caps := defaultCaps()
	caps.Composer = composerFunc(func(context.Context, AnswerInput) (string, error) {
		panic("template missing")
	})
	f := newFixture(t, caps, DefaultConfig())

	_, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})

	assert.ErrorIs(t, err, ErrPhasePanicked)
	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "answer", perr.Phase)
}

func TestRunBranchesRunConcurrently(t *testing.T) {
	kbStarted, webStarted := make(chan struct{}), make(chan struct{})
	wait := func(self, other chan struct{}, list []sources.Source) Retriever {
		return retrieverFunc(func(ctx context.Context, _ string) (*Retrieval, error) {
			close(self)
			select {
			case <-other:
				return &Retrieval{Text: "ok", Sources: list}, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("branches ran sequentially")
			}
		})
	}
	caps := defaultCaps()
	caps.Knowledge = wait(kbStarted, webStarted, kbSources())
	caps.Web = wait(webStarted, kbStarted, webSources(2))
	f := newFixture(t, caps, DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeKB: true, IncludeWeb: true})

	require.NoError(t, err)
	assert.Empty(t, res.Metadata.BranchFailure)
}

func TestRunWithoutBranchesUsesEmptyContext(t *testing.T) {
	var seen SynthesisInput
	caps := defaultCaps()
	caps.Synthesizer = synthesizerFunc(func(_ context.Context, in SynthesisInput) (string, error) {
		seen = in
		return "synthesis", nil
	})
	f := newFixture(t, caps, DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{})

	require.NoError(t, err)
	assert.Empty(t, seen.Context)
	assert.Empty(t, res.Sources)
	assert.Equal(t, CoverageNone, res.Metadata.Coverage)
	assert.Len(t, res.StageLog, 3)
}

func TestRunExtractsSourcesFromText(t *testing.T) {
	caps := defaultCaps()
	caps.Web = okRetriever("Ramen is a Japanese noodle soup with many regional styles.\n\nhttps://ramen.example/guide", nil)
	f := newFixture(t, caps, DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})

	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "https://ramen.example/guide", res.Sources[0].URL)
	assert.Equal(t, sources.OriginWeb, res.Sources[0].Origin)
}

func TestRunEmptyValidationUsesFallbackConfidence(t *testing.T) {
	caps := defaultCaps()
	caps.Validator = validatorFunc(func(context.Context, ValidationInput) (*Validation, error) {
		return &Validation{}, nil
	})
	f := newFixture(t, caps, DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})

	require.NoError(t, err)
	assert.True(t, res.Scores.Fallback)
	assert.InDelta(t, 0.5, res.Scores.FinalConfidence, 1e-9)
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t, defaultCaps(), DefaultConfig())
	f.bus.Connect("s1")

	_, err := f.ctrl.Run(context.Background(), "   ", "s1", Options{IncludeWeb: true})

	assert.ErrorIs(t, err, ErrEmptyQuery)
	events := f.events("s1")
	require.Len(t, events, 1)
	assert.Equal(t, progress.EventError, events[0].Type)
}

func TestRunCompletesWhenNobodyListens(t *testing.T) {
	f := newFixture(t, defaultCaps(), DefaultConfig())

	res, err := f.ctrl.Run(context.Background(), "ramen", "never-connected", Options{IncludeWeb: true})

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	_, ok := f.bus.Poll("never-connected")
	assert.False(t, ok)
}

type recordingStore struct {
	mu    sync.Mutex
	saved []*store.Session
}

func (r *recordingStore) Save(_ context.Context, s *store.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, s)
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	records []AuditRecord
}

func (r *recordingAudit) RecordRun(_ context.Context, rec AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type inlineTasks struct{}

func (inlineTasks) Submit(task func(ctx context.Context)) error {
	task(context.Background())
	return nil
}

func TestRunPersistsSessionAndAudit(t *testing.T) {
	sessions := &recordingStore{}
	audit := &recordingAudit{}
	f := newFixture(t, defaultCaps(), DefaultConfig(), WithSessionStore(sessions), WithAudit(audit, inlineTasks{}))

	_, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(sessions.saved), 2)
	assert.Equal(t, store.SessionRunning, sessions.saved[0].Status)
	final := sessions.saved[len(sessions.saved)-1]
	assert.Equal(t, store.SessionCompleted, final.Status)
	assert.NotEmpty(t, final.DetectedLanguage)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, "s1", rec.SessionID)
	assert.Equal(t, WorkflowName, rec.WorkflowName)
	assert.Equal(t, store.SessionCompleted, rec.Status)
	require.NotNil(t, rec.Result)
	assert.Empty(t, rec.Error)
}

func TestRunAuditsFailures(t *testing.T) {
	audit := &recordingAudit{}
	caps := defaultCaps()
	caps.Synthesizer = synthesizerFunc(func(context.Context, SynthesisInput) (string, error) {
		return "", errors.New("model offline")
	})
	f := newFixture(t, caps, DefaultConfig(), WithAudit(audit, inlineTasks{}))

	_, err := f.ctrl.Run(context.Background(), "ramen", "s1", Options{IncludeWeb: true})
	require.Error(t, err)

	require.Len(t, audit.records, 1)
	assert.Equal(t, store.SessionFailed, audit.records[0].Status)
	assert.Nil(t, audit.records[0].Result)
	assert.Contains(t, audit.records[0].Error, "model offline")
}

func TestNewControllerRequiresCapabilities(t *testing.T) {
	_, err := NewController(Capabilities{}, progress.NewBus(progress.DefaultConfig()), nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrCapabilityMissing)

	_, err = NewController(defaultCaps(), nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrCapabilityMissing)
}
