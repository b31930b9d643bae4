package contract

import (
	"context"

	"info-seeker-be/internal/entity"
)

type DocumentRepository interface {
	// ReplaceByURL swaps every chunk stored for url with docs in one transaction.
	ReplaceByURL(ctx context.Context, url string, docs []*entity.Document) error
	// SearchSimilarWithScore returns the nearest chunks with cosine similarity >= threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredDocument, error)
	Count(ctx context.Context) (int64, error)
}
