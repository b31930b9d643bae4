package dto

import (
	"time"

	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/store"
)

type SearchRequest struct {
	Query      string `json:"query" validate:"required,max=2000"`
	SessionID  string `json:"session_id,omitempty" validate:"omitempty,max=64,excludesall=/?#"`
	IncludeKB  *bool  `json:"include_kb,omitempty"`
	IncludeWeb *bool  `json:"include_web,omitempty"`
}

// Options resolves the branch switches; an omitted switch is enabled.
func (r SearchRequest) Options() pipeline.Options {
	opts := pipeline.Options{IncludeKB: true, IncludeWeb: true}
	if r.IncludeKB != nil {
		opts.IncludeKB = *r.IncludeKB
	}
	if r.IncludeWeb != nil {
		opts.IncludeWeb = *r.IncludeWeb
	}
	return opts
}

type SearchAcceptedResponse struct {
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	StreamURL    string `json:"stream_url"`
	WebsocketURL string `json:"websocket_url"`
}

// SearchRunMessage is the payload dispatched from the API to the run consumer.
type SearchRunMessage struct {
	SessionID   string           `json:"session_id"`
	Query       string           `json:"query"`
	Options     pipeline.Options `json:"options"`
	RequestedAt time.Time        `json:"requested_at"`
}

type SessionResponse struct {
	Session *store.Session   `json:"session"`
	Result  *pipeline.Result `json:"result,omitempty"`
}

type WorkflowSessionResponse struct {
	SessionID        string     `json:"session_id"`
	WorkflowName     string     `json:"workflow_name"`
	Status           string     `json:"status"`
	Query            string     `json:"query"`
	DetectedLanguage string     `json:"detected_language"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Error            string     `json:"error,omitempty"`
}
