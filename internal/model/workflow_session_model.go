package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkflowSession is the audit row written once per search run.
type WorkflowSession struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId        string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	WorkflowName     string         `gorm:"type:varchar(100);not null;index"`
	Status           string         `gorm:"type:varchar(20);not null;index"`
	Query            string         `gorm:"type:text"`
	DetectedLanguage string         `gorm:"type:varchar(10)"`
	StartedAt        time.Time      `gorm:"not null"`
	CompletedAt      *time.Time
	Metadata         datatypes.JSON `gorm:"type:jsonb"`
	Result           datatypes.JSON `gorm:"type:jsonb"`
	ErrorMessage     string         `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (WorkflowSession) TableName() string {
	return "agent_workflow_sessions"
}
