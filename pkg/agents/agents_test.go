package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"info-seeker-be/pkg/language"
	"info-seeker-be/pkg/llm"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/sources"
)

// scriptedLLM answers by matching a substring of the last message.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts []string
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	last := history[len(history)-1].Content
	s.mu.Lock()
	s.prompts = append(s.prompts, last)
	s.mu.Unlock()
	for key, err := range s.errs {
		if strings.Contains(last, key) {
			return "", err
		}
	}
	for key, reply := range s.replies {
		if strings.Contains(last, key) {
			return reply, nil
		}
	}
	return "ok", nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

type evidenceFunc func(ctx context.Context, query string) (*pipeline.Retrieval, error)

func (f evidenceFunc) Lookup(ctx context.Context, query string) (*pipeline.Retrieval, error) {
	return f(ctx, query)
}

const claimText = "According to the survey, 45% of users prefer dark mode. The sky is blue."

func TestSynthesizerIncludesContextAndLanguage(t *testing.T) {
	model := &scriptedLLM{}
	s := NewSynthesizer(model)

	_, err := s.Combine(context.Background(), pipeline.SynthesisInput{
		Query:    "ramen",
		Context:  "## Web Search Results\n\nramen facts",
		Language: language.Detection{Code: "ja"},
	})

	require.NoError(t, err)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "ramen facts")
	assert.Contains(t, model.prompts[0], language.Instruction("ja"))
}

func TestSynthesizerHandlesEmptyContext(t *testing.T) {
	model := &scriptedLLM{}

	_, err := NewSynthesizer(model).Combine(context.Background(), pipeline.SynthesisInput{Query: "ramen"})

	require.NoError(t, err)
	assert.Contains(t, model.prompts[0], "No retrieved information is available")
}

func TestValidatorRunsFactCheckForClaims(t *testing.T) {
	model := &scriptedLLM{replies: map[string]string{
		"verify these claims":      "The survey figure is confirmed.",
		"comprehensive validation": "Overall Confidence Score: 0.8",
	}}
	var evidenceQuery string
	evidence := evidenceFunc(func(_ context.Context, q string) (*pipeline.Retrieval, error) {
		evidenceQuery = q
		return &pipeline.Retrieval{Text: "survey results page"}, nil
	})
	v := NewValidator(model, evidence, nil)

	out, err := v.Validate(context.Background(), pipeline.ValidationInput{Query: "dark mode", Text: claimText})

	require.NoError(t, err)
	assert.Equal(t, "Overall Confidence Score: 0.8", out.Report)
	require.NotNil(t, out.FactCheck)
	assert.Equal(t, "The survey figure is confirmed.", *out.FactCheck)
	assert.Equal(t, []string{"According to the survey, 45% of users prefer dark mode"}, out.KeyClaims)
	assert.Contains(t, evidenceQuery, "dark mode")
}

func TestValidatorSkipsFactCheckWithoutClaims(t *testing.T) {
	model := &scriptedLLM{}

	out, err := NewValidator(model, nil, nil).Validate(context.Background(), pipeline.ValidationInput{Query: "sky", Text: "The sky is blue."})

	require.NoError(t, err)
	assert.Nil(t, out.FactCheck)
	assert.Len(t, model.prompts, 1)
}

func TestValidatorToleratesFactCheckFailure(t *testing.T) {
	model := &scriptedLLM{errs: map[string]error{"verify these claims": errors.New("timeout")}}

	out, err := NewValidator(model, nil, nil).Validate(context.Background(), pipeline.ValidationInput{Query: "dark mode", Text: claimText})

	require.NoError(t, err)
	assert.Nil(t, out.FactCheck)
	assert.Equal(t, "ok", out.Report)
}

func TestValidatorFailsWhenReportFails(t *testing.T) {
	model := &scriptedLLM{errs: map[string]error{"comprehensive validation": errors.New("model offline")}}

	_, err := NewValidator(model, nil, nil).Validate(context.Background(), pipeline.ValidationInput{Query: "sky", Text: "The sky is blue."})

	assert.ErrorContains(t, err, "model offline")
}

func TestComposerListsSources(t *testing.T) {
	model := &scriptedLLM{}
	list := []sources.Source{{Title: "Guide", URL: "https://a.example/guide", Origin: sources.OriginWeb}}

	_, err := NewComposer(model).Compose(context.Background(), pipeline.AnswerInput{Query: "ramen", Sources: list, Confidence: 0.72})

	require.NoError(t, err)
	assert.Contains(t, model.prompts[0], "[1] Guide (web) - https://a.example/guide")
	assert.Contains(t, model.prompts[0], "confidence 0.72")
}
