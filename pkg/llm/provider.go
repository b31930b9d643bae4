package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("llm returned an empty response")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// Ask sends a system instruction and a user prompt as a two-message chat.
func Ask(ctx context.Context, p LLMProvider, system, prompt string, options ...Option) (string, error) {
	history := make([]Message, 0, 2)
	if system != "" {
		history = append(history, Message{Role: RoleSystem, Content: system})
	}
	history = append(history, Message{Role: RoleUser, Content: prompt})
	return p.Chat(ctx, history, options...)
}
