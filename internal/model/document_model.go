package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// Document is one embedded chunk of a knowledge base entry.
type Document struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title      string          `gorm:"type:text;not null"`
	Url        string          `gorm:"type:text;index"`
	Content    string          `gorm:"type:text;not null"`
	ChunkIndex int             `gorm:"default:0"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
