package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id         uuid.UUID
	Title      string
	Url        string
	Content    string
	ChunkIndex int
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredDocument pairs a document with its cosine similarity to a query.
type ScoredDocument struct {
	Document   *Document
	Similarity float64
}
