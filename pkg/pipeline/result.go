package pipeline

import (
	"time"

	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/sources"
	"info-seeker-be/pkg/store"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"

	CoverageFull    = "full"
	CoverageReduced = "reduced"
	CoverageNone    = "none"
)

// Options selects which retrieval branches run.
type Options struct {
	IncludeKB  bool `json:"include_kb"`
	IncludeWeb bool `json:"include_web"`
}

type Metadata struct {
	AgentsUsed       []string  `json:"agents_used"`
	SourceCount      int       `json:"source_count"`
	SourcesByOrigin  Counts    `json:"sources_by_origin"`
	DetectedLanguage string    `json:"detected_language"`
	LanguageName     string    `json:"language_name"`
	BranchFailure    []string  `json:"branch_failure,omitempty"`
	Coverage         string    `json:"coverage"`
	KeyClaims        []string  `json:"key_claims,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	CompletedAt      time.Time `json:"completed_at"`
	ElapsedSeconds   float64   `json:"processing_time"`
}

type Counts struct {
	KnowledgeBase int `json:"knowledge_base"`
	Web           int `json:"web"`
}

// Result is the outcome of a successful run.
type Result struct {
	SessionID  string                 `json:"session_id"`
	Query      string                 `json:"query"`
	Status     string                 `json:"status"`
	Answer     string                 `json:"answer"`
	Synthesis  string                 `json:"synthesis"`
	Validation string                 `json:"validation"`
	Sources    []sources.Source       `json:"sources"`
	Scores     scoring.ScoreBreakdown `json:"scores"`
	Analysis   scoring.Analysis       `json:"analysis"`
	Metadata   Metadata               `json:"metadata"`
	StageLog   []store.StageResult    `json:"stage_log"`
}
