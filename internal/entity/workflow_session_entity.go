package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type WorkflowSession struct {
	Id               uuid.UUID
	SessionId        string
	WorkflowName     string
	Status           string
	Query            string
	DetectedLanguage string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Metadata         map[string]interface{}
	Result           json.RawMessage
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
