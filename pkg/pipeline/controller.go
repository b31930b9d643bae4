package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/language"
	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/sources"
	"info-seeker-be/pkg/store"
)

const (
	agentPipeline = "pipeline"

	headerKnowledge = "## Knowledge Base Results"
	headerWeb       = "## Web Search Results"
)

// Publisher receives progress events. *progress.Bus satisfies it.
type Publisher interface {
	Publish(sessionID string, ev progress.Event) bool
}

type Config struct {
	PhaseTimeout time.Duration
	Sources      sources.Policy
}

func DefaultConfig() Config {
	return Config{
		PhaseTimeout: 60 * time.Second,
		Sources:      sources.DefaultPolicy(),
	}
}

type Option func(*Controller) error

func WithLogger(l logger.ILogger) Option {
	return func(c *Controller) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) error {
		if now == nil {
			return fmt.Errorf("%w: clock", ErrCapabilityMissing)
		}
		c.now = now
		return nil
	}
}

// WithSessionStore saves a snapshot of every session at start and end.
func WithSessionStore(s SessionStore) Option {
	return func(c *Controller) error {
		c.sessions = s
		return nil
	}
}

// WithAudit persists one record per run through tasks, off the request path.
func WithAudit(sink AuditSink, tasks Submitter) Option {
	return func(c *Controller) error {
		if sink != nil && tasks == nil {
			return fmt.Errorf("%w: audit task set", ErrCapabilityMissing)
		}
		c.audit = sink
		c.tasks = tasks
		return nil
	}
}

// Controller sequences retrieval, synthesis, validation and answer phases
// for one query at a time. It holds no per-run state; a Controller may serve
// any number of concurrent runs.
type Controller struct {
	caps     Capabilities
	bus      Publisher
	scorer   *scoring.Engine
	cfg      Config
	logger   logger.ILogger
	tracer   trace.Tracer
	now      func() time.Time
	sessions SessionStore
	audit    AuditSink
	tasks    Submitter
}

func NewController(caps Capabilities, bus Publisher, scorer *scoring.Engine, cfg Config, opts ...Option) (*Controller, error) {
	if caps.Synthesizer == nil || caps.Validator == nil || caps.Composer == nil {
		return nil, fmt.Errorf("%w: synthesizer, validator and composer are required", ErrCapabilityMissing)
	}
	if bus == nil {
		return nil, fmt.Errorf("%w: progress publisher", ErrCapabilityMissing)
	}
	if scorer == nil {
		scorer = scoring.NewEngine(scoring.DefaultConfig())
	}
	c := &Controller{
		caps:   caps,
		bus:    bus,
		scorer: scorer,
		cfg:    cfg,
		logger: logger.NewNopLogger(),
		tracer: otel.Tracer("info-seeker-be/pipeline"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BranchOutcome is the explicit result of one retrieval branch: exactly one
// of Retrieval or Err is set.
type BranchOutcome struct {
	Origin    sources.Origin
	Retrieval *Retrieval
	Err       error
}

func (o BranchOutcome) OK() bool { return o.Err == nil && o.Retrieval != nil }

// Run executes the full pipeline. Only a sequential phase failure is returned
// as an error; retrieval branch failures degrade the result instead.
func (c *Controller) Run(ctx context.Context, query, sessionID string, opts Options) (*Result, error) {
	query = strings.TrimSpace(query)
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	run := newRunState(sessionID, query, opts, c.now())
	if query == "" {
		c.publish(run, run.event(progress.EventError, agentPipeline, progress.StatusError, ErrEmptyQuery.Error(), nil))
		return nil, ErrEmptyQuery
	}

	ctx, span := c.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Bool("pipeline.include_kb", opts.IncludeKB),
		attribute.Bool("pipeline.include_web", opts.IncludeWeb),
	))
	defer span.End()

	c.logger.Info("PIPELINE", "Run started", map[string]interface{}{
		"session_id":  sessionID,
		"query":       truncate(query, 50),
		"include_kb":  opts.IncludeKB,
		"include_web": opts.IncludeWeb,
	})
	c.publish(run, run.event(progress.EventProgress, agentPipeline, progress.StatusStarted, "Search started", map[string]interface{}{
		"query": query,
	}))

	lang := language.Detect(query)
	run.setLanguage(lang.Code)
	c.saveSession(ctx, run)

	// ═══════════════════════════════════════════════════════════════
	// FAN-OUT: knowledge base and web retrieval
	// ═══════════════════════════════════════════════════════════════
	outcomes := c.retrieve(ctx, run)
	merged, lists, failed := mergeOutcomes(outcomes)
	found := sources.Aggregate(lists, c.cfg.Sources)

	coverage := CoverageFull
	switch {
	case len(outcomes) == 0 || len(failed) == len(outcomes):
		coverage = CoverageNone
	case len(failed) > 0:
		coverage = CoverageReduced
	}

	// ═══════════════════════════════════════════════════════════════
	// SEQUENTIAL: synthesis -> validation -> answer
	// ═══════════════════════════════════════════════════════════════
	synthesis, err := runPhase(ctx, c, run, stageSynthesis, identity, func(ctx context.Context) (string, error) {
		return c.caps.Synthesizer.Combine(ctx, SynthesisInput{
			Query:    query,
			Context:  merged,
			Sources:  found,
			Language: lang,
		})
	})
	if err != nil {
		return nil, c.fail(ctx, span, run, stageSynthesis, err)
	}

	validation, err := runPhase(ctx, c, run, stageValidate, validationPreview, func(ctx context.Context) (*Validation, error) {
		return c.caps.Validator.Validate(ctx, ValidationInput{
			Query:   query,
			Text:    synthesis,
			Sources: found,
		})
	})
	if err != nil {
		return nil, c.fail(ctx, span, run, stageValidate, err)
	}
	if validation == nil {
		validation = &Validation{}
	}
	scores := c.scorer.Confidence(scoring.ConfidenceInput{
		Report:    validation.Report,
		Sources:   found,
		FactCheck: validation.FactCheck,
	})
	if scores.Fallback {
		c.logger.Warn("PIPELINE", "Validation report empty, using fallback confidence", map[string]interface{}{
			"session_id": sessionID,
			"confidence": scores.FinalConfidence,
		})
	}

	answer, err := runPhase(ctx, c, run, stageAnswer, identity, func(ctx context.Context) (string, error) {
		return c.caps.Composer.Compose(ctx, AnswerInput{
			Query:      query,
			Synthesis:  synthesis,
			Validation: validation.Report,
			Sources:    found,
			Confidence: scores.FinalConfidence,
			Language:   lang,
		})
	})
	if err != nil {
		return nil, c.fail(ctx, span, run, stageAnswer, err)
	}

	analysis := c.scorer.Analyze(answer, found, scores.FinalConfidence)
	scores.QualityScore = analysis.QualityScore

	completedAt := c.now()
	run.finish(store.SessionCompleted, completedAt)
	snapshot := run.snapshot()
	counts := sources.CountByOrigin(found)

	result := &Result{
		SessionID:  sessionID,
		Query:      query,
		Status:     StatusSuccess,
		Answer:     answer,
		Synthesis:  synthesis,
		Validation: validation.Report,
		Sources:    found,
		Scores:     scores,
		Analysis:   analysis,
		Metadata: Metadata{
			AgentsUsed:       run.agentsUsed(),
			SourceCount:      len(found),
			SourcesByOrigin:  Counts{KnowledgeBase: counts[sources.OriginKnowledgeBase], Web: counts[sources.OriginWeb]},
			DetectedLanguage: lang.Code,
			LanguageName:     lang.Name,
			BranchFailure:    failed,
			Coverage:         coverage,
			KeyClaims:        validation.KeyClaims,
			StartedAt:        run.started,
			CompletedAt:      completedAt,
			ElapsedSeconds:   completedAt.Sub(run.started).Seconds(),
		},
		StageLog: snapshot.StageLog,
	}

	span.SetAttributes(
		attribute.Int("pipeline.source_count", len(found)),
		attribute.Float64("pipeline.confidence", scores.FinalConfidence),
	)
	c.logger.Info("PIPELINE", "Run completed", map[string]interface{}{
		"session_id":   sessionID,
		"sources":      len(found),
		"confidence":   scores.FinalConfidence,
		"quality":      scores.QualityScore,
		"coverage":     coverage,
		"elapsed_secs": result.Metadata.ElapsedSeconds,
	})

	c.publish(run, run.event(progress.EventFinalResult, agentPipeline, progress.StatusCompleted, "Search completed", map[string]interface{}{
		"result": result,
	}))
	c.saveSession(ctx, run)
	c.recordAudit(run, snapshot, result, "")
	return result, nil
}

// retrieve runs the enabled branches concurrently and waits for all of them.
// Branch goroutines never return an error to the group; each outcome lands in
// its own slot.
func (c *Controller) retrieve(ctx context.Context, run *runState) []BranchOutcome {
	type branch struct {
		origin    sources.Origin
		stage     stage
		retriever Retriever
	}
	var branches []branch
	if run.options.IncludeKB {
		branches = append(branches, branch{sources.OriginKnowledgeBase, stageKnowledge, c.caps.Knowledge})
	}
	if run.options.IncludeWeb {
		branches = append(branches, branch{sources.OriginWeb, stageWeb, c.caps.Web})
	}
	if len(branches) == 0 {
		c.logger.Info("PIPELINE", "No retrieval branch enabled, continuing with empty context", map[string]interface{}{
			"session_id": run.sessionID,
		})
		return nil
	}

	outcomes := make([]BranchOutcome, len(branches))
	var g errgroup.Group
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			outcomes[i] = BranchOutcome{Origin: b.origin}
			if b.retriever == nil {
				outcomes[i].Err = fmt.Errorf("%w: %s retriever", ErrCapabilityMissing, b.origin)
				c.publish(run, run.event(progress.EventProgress, b.stage.agent, progress.StatusFailed, outcomes[i].Err.Error(), nil))
				run.record(store.StageResult{Stage: b.stage.name, Agent: b.stage.agent, Status: store.StageFailed, StartedAt: c.now(), EndedAt: c.now(), Error: outcomes[i].Err.Error()})
				return nil
			}
			res, err := runPhase(ctx, c, run, b.stage, retrievalPreview, func(ctx context.Context) (*Retrieval, error) {
				return b.retriever.Lookup(ctx, run.query)
			})
			if err == nil && res == nil {
				res = &Retrieval{}
			}
			outcomes[i].Retrieval, outcomes[i].Err = res, err
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// mergeOutcomes concatenates successful branch text under labeled headers and
// collects each branch's sources, preferring structured lists over URLs
// extracted from the text.
func mergeOutcomes(outcomes []BranchOutcome) (string, [][]sources.Source, []string) {
	var (
		sections []string
		lists    [][]sources.Source
		failed   []string
	)
	for _, o := range outcomes {
		if !o.OK() {
			failed = append(failed, string(o.Origin))
			continue
		}
		text := strings.TrimSpace(o.Retrieval.Text)
		if text != "" {
			sections = append(sections, sectionHeader(o.Origin)+"\n\n"+text)
		}

		if len(o.Retrieval.Sources) > 0 {
			list := make([]sources.Source, len(o.Retrieval.Sources))
			for i, s := range o.Retrieval.Sources {
				if s.Origin == "" {
					s.Origin = o.Origin
				}
				list[i] = s
			}
			lists = append(lists, list)
			continue
		}
		lists = append(lists, sources.ExtractFromText(text, o.Origin))
	}
	return strings.Join(sections, "\n\n"), lists, failed
}

func sectionHeader(origin sources.Origin) string {
	if origin == sources.OriginKnowledgeBase {
		return headerKnowledge
	}
	return headerWeb
}

func (c *Controller) fail(ctx context.Context, span trace.Span, run *runState, st stage, err error) error {
	perr := &PhaseError{Phase: st.name, Err: err}
	run.finish(store.SessionFailed, c.now())

	span.RecordError(perr)
	span.SetStatus(codes.Error, perr.Error())
	c.logger.Error("PIPELINE", "Run aborted", map[string]interface{}{
		"session_id": run.sessionID,
		"phase":      st.name,
		"error":      err.Error(),
	})

	c.publish(run, run.event(progress.EventError, agentPipeline, progress.StatusError, "Search failed during "+st.name, map[string]interface{}{
		"phase": st.name,
		"error": err.Error(),
	}))
	c.saveSession(ctx, run)
	c.recordAudit(run, run.snapshot(), nil, perr.Error())
	return perr
}

func (c *Controller) publish(run *runState, ev progress.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = c.now().UTC()
	}
	c.bus.Publish(run.sessionID, ev)
}

func (c *Controller) saveSession(ctx context.Context, run *runState) {
	if c.sessions == nil {
		return
	}
	if err := c.sessions.Save(ctx, run.snapshot()); err != nil {
		c.logger.Warn("PIPELINE", "Failed to save session snapshot", map[string]interface{}{
			"session_id": run.sessionID,
			"error":      err.Error(),
		})
	}
}

func (c *Controller) recordAudit(run *runState, snap *store.Session, result *Result, errMsg string) {
	if c.audit == nil {
		return
	}
	completedAt := c.now()
	if snap.CompletedAt != nil {
		completedAt = *snap.CompletedAt
	}
	rec := AuditRecord{
		SessionID:    run.sessionID,
		WorkflowName: WorkflowName,
		Status:       snap.Status,
		StartedAt:    run.started,
		CompletedAt:  completedAt,
		Metadata: map[string]interface{}{
			"query":             run.query,
			"include_kb":        run.options.IncludeKB,
			"include_web":       run.options.IncludeWeb,
			"detected_language": snap.DetectedLanguage,
			"stage_log":         snap.StageLog,
		},
		Result: result,
		Error:  errMsg,
	}
	err := c.tasks.Submit(func(ctx context.Context) {
		if err := c.audit.RecordRun(ctx, rec); err != nil {
			c.logger.Error("PIPELINE", "Failed to persist audit record", map[string]interface{}{
				"session_id": rec.SessionID,
				"error":      err.Error(),
			})
		}
	})
	if err != nil {
		c.logger.Warn("PIPELINE", "Audit task rejected", map[string]interface{}{
			"session_id": run.sessionID,
			"error":      err.Error(),
		})
	}
}

func identity(s string) string { return s }

func validationPreview(v *Validation) string {
	if v == nil {
		return ""
	}
	return v.Report
}

func retrievalPreview(r *Retrieval) string {
	if r == nil {
		return ""
	}
	return r.Text
}
