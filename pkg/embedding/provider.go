package embedding

import (
	"context"
	"errors"
)

var ErrEmptyEmbedding = errors.New("embedding provider returned no values")

// EmbeddingProvider turns text into a unit-length vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
