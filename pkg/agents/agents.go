// Package agents implements the synthesis, validation and answer phases on
// top of an LLM provider.
package agents

import (
	"context"
	"fmt"
	"strings"

	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/pkg/language"
	"info-seeker-be/pkg/llm"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/sources"
)

const maxFactCheckClaims = 2

var (
	_ pipeline.Synthesizer = (*Synthesizer)(nil)
	_ pipeline.Validator   = (*Validator)(nil)
	_ pipeline.Composer    = (*Composer)(nil)
)

type Synthesizer struct {
	llm llm.LLMProvider
}

func NewSynthesizer(p llm.LLMProvider) *Synthesizer {
	return &Synthesizer{llm: p}
}

func (s *Synthesizer) Combine(ctx context.Context, in pipeline.SynthesisInput) (string, error) {
	material := in.Context
	if strings.TrimSpace(material) == "" {
		material = "No retrieved information is available. Answer from general knowledge and say so."
	}
	prompt := fmt.Sprintf(synthesisPrompt, in.Query, material, language.Instruction(in.Language.Code))
	return llm.Ask(ctx, s.llm, synthesisSystem, prompt, llm.WithTemperature(0.3))
}

// Validator asks the model for a validation report and, when the synthesis
// contains checkable claims, runs a separate fact check. Fact-check evidence
// comes from the optional evidence retriever.
type Validator struct {
	llm      llm.LLMProvider
	evidence pipeline.Retriever
	logger   logger.ILogger
}

func NewValidator(p llm.LLMProvider, evidence pipeline.Retriever, log logger.ILogger) *Validator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Validator{llm: p, evidence: evidence, logger: log}
}

func (v *Validator) Validate(ctx context.Context, in pipeline.ValidationInput) (*pipeline.Validation, error) {
	claims := scoring.KeyClaims(in.Text)
	out := &pipeline.Validation{KeyClaims: claims}
	if len(claims) > 0 {
		out.FactCheck = v.factCheck(ctx, in.Query, claims)
	}

	prompt := fmt.Sprintf(validationPrompt, in.Query, in.Text, formatSources(in.Sources))
	report, err := llm.Ask(ctx, v.llm, validationSystem, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}
	out.Report = report
	return out, nil
}

// factCheck never fails the validation; an error just means no fact check.
func (v *Validator) factCheck(ctx context.Context, query string, claims []string) *string {
	if len(claims) > maxFactCheckClaims {
		claims = claims[:maxFactCheckClaims]
	}
	joined := strings.Join(claims, ", ")

	var evidence string
	if v.evidence != nil {
		res, err := v.evidence.Lookup(ctx, query+" "+claims[0])
		if err != nil {
			v.logger.Warn("VALIDATOR", "Fact-check evidence lookup failed", map[string]interface{}{"error": err.Error()})
		} else if res != nil && res.Text != "" {
			evidence = "Evidence found on the web:\n" + res.Text + "\n"
		}
	}

	resp, err := v.llm.Generate(ctx, fmt.Sprintf(factCheckPrompt, query, joined, evidence))
	if err != nil {
		v.logger.Warn("VALIDATOR", "Fact check failed", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return &resp
}

type Composer struct {
	llm llm.LLMProvider
}

func NewComposer(p llm.LLMProvider) *Composer {
	return &Composer{llm: p}
}

func (c *Composer) Compose(ctx context.Context, in pipeline.AnswerInput) (string, error) {
	prompt := fmt.Sprintf(answerPrompt,
		in.Query,
		in.Synthesis,
		in.Confidence,
		in.Validation,
		formatSources(in.Sources),
		language.Instruction(in.Language.Code),
	)
	return llm.Ask(ctx, c.llm, answerSystem, prompt, llm.WithTemperature(0.5))
}

func formatSources(list []sources.Source) string {
	if len(list) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, s := range list {
		fmt.Fprintf(&b, "[%d] %s (%s) - %s\n", i+1, s.Title, s.Origin, s.URL)
	}
	return b.String()
}
