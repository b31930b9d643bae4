package pipeline

import (
	"context"

	"info-seeker-be/pkg/language"
	"info-seeker-be/pkg/sources"
)

// Retrieval is what a lookup branch hands back: free text plus any structured
// sources it already knows about.
type Retrieval struct {
	Text    string
	Sources []sources.Source
}

type Retriever interface {
	Lookup(ctx context.Context, query string) (*Retrieval, error)
}

type SynthesisInput struct {
	Query    string
	Context  string
	Sources  []sources.Source
	Language language.Detection
}

type Synthesizer interface {
	Combine(ctx context.Context, in SynthesisInput) (string, error)
}

type ValidationInput struct {
	Query   string
	Text    string
	Sources []sources.Source
}

// Validation is the validator's report. FactCheck is nil when no fact check
// sub-call was made.
type Validation struct {
	Report    string
	FactCheck *string
	KeyClaims []string
}

type Validator interface {
	Validate(ctx context.Context, in ValidationInput) (*Validation, error)
}

type AnswerInput struct {
	Query      string
	Synthesis  string
	Validation string
	Sources    []sources.Source
	Confidence float64
	Language   language.Detection
}

type Composer interface {
	Compose(ctx context.Context, in AnswerInput) (string, error)
}

// Capabilities bundles the collaborators a run needs. Knowledge and Web may
// be nil when that branch is never enabled.
type Capabilities struct {
	Knowledge   Retriever
	Web         Retriever
	Synthesizer Synthesizer
	Validator   Validator
	Composer    Composer
}
