package scoring

import (
	"strings"

	"info-seeker-be/pkg/sources"
)

// ScoreBreakdown is the full set of numbers attached to a search result.
type ScoreBreakdown struct {
	BaseScore       float64  `json:"base_score"`
	FactCheckScore  *float64 `json:"fact_check_score,omitempty"`
	FinalConfidence float64  `json:"final_confidence"`
	QualityScore    float64  `json:"quality_score"`
	Fallback        bool     `json:"fallback,omitempty"`
}

// ConfidenceInput carries the validator's output. FactCheck is nil when no
// fact check sub-call was performed.
type ConfidenceInput struct {
	Report    string
	Sources   []sources.Source
	FactCheck *string
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// BaseScore derives a confidence heuristic from a free-text validation report.
func (e *Engine) BaseScore(report string, list []sources.Source) float64 {
	score, ok := extractConfidence(report)
	if !ok {
		score = e.cfg.NeutralBase
		score += float64(countPresent(report, e.cfg.PositiveIndicators)) * e.cfg.PositiveIncrement
		score -= float64(countPresent(report, e.cfg.NegativeIndicators)) * e.cfg.NegativeIncrement
	}
	score += authorityRatio(list, e.cfg.AuthorityDomains) * e.cfg.AuthorityBonus
	return clamp(score, e.cfg.Floor, e.cfg.Ceiling)
}

// FactCheckScore scores a fact-check response by counting verdict words.
func (e *Engine) FactCheckScore(response string) float64 {
	pos := countPresent(response, e.cfg.FactCheckPositive)
	neg := countPresent(response, e.cfg.FactCheckNegative)

	var score float64
	switch {
	case pos > neg:
		score = e.cfg.FactCheckPositiveBase + float64(pos)*e.cfg.FactCheckPositiveStep
	case neg > pos:
		score = e.cfg.FactCheckNegativeBase - float64(neg)*e.cfg.FactCheckNegativeStep
	default:
		score = e.cfg.FactCheckTie
	}
	return clamp(score, e.cfg.Floor, e.cfg.Ceiling)
}

// Confidence blends the base score with the fact-check score when present.
// An empty report yields the fallback formula.
func (e *Engine) Confidence(in ConfidenceInput) ScoreBreakdown {
	if strings.TrimSpace(in.Report) == "" {
		fb := e.FallbackConfidence(in.Sources)
		return ScoreBreakdown{BaseScore: fb, FinalConfidence: fb, Fallback: true}
	}

	base := e.BaseScore(in.Report, in.Sources)
	out := ScoreBreakdown{BaseScore: base, FinalConfidence: base}
	if in.FactCheck != nil {
		fc := e.FactCheckScore(*in.FactCheck)
		out.FactCheckScore = &fc
		out.FinalConfidence = e.cfg.BaseWeight*base + e.cfg.FactCheckWeight*fc
	}
	out.FinalConfidence = clamp(out.FinalConfidence, e.cfg.Floor, e.cfg.Ceiling)
	return out
}

// FallbackConfidence is used when validation failed or produced nothing.
func (e *Engine) FallbackConfidence(list []sources.Source) float64 {
	score := e.cfg.FallbackBase
	if len(list) >= e.cfg.FallbackFewSources {
		score += e.cfg.FallbackFewBonus
	}
	if len(list) >= e.cfg.FallbackManySources {
		score += e.cfg.FallbackManyBonus
	}
	score += authorityRatio(list, e.cfg.AuthorityDomains) * e.cfg.FallbackAuthorityBonus
	return clamp(score, e.cfg.Floor, e.cfg.FallbackCeiling)
}
