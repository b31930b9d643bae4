package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"info-seeker-be/pkg/embedding"
	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/sources"
)

var ErrNoSearcher = errors.New("knowledge base searcher not configured")

// Document is a knowledge base entry returned by a similarity search.
type Document struct {
	Title      string
	URL        string
	Content    string
	Similarity float64
}

// DocumentSearcher finds the documents nearest to a query vector.
type DocumentSearcher interface {
	SearchSimilar(ctx context.Context, vector []float32, limit int) ([]Document, error)
}

type KnowledgeConfig struct {
	Limit               int
	SimilarityThreshold float64
}

// Knowledge looks up the internal document store by embedding similarity.
type Knowledge struct {
	embedder embedding.EmbeddingProvider
	searcher DocumentSearcher
	cfg      KnowledgeConfig
}

var _ pipeline.Retriever = (*Knowledge)(nil)

func NewKnowledge(embedder embedding.EmbeddingProvider, searcher DocumentSearcher, cfg KnowledgeConfig) *Knowledge {
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	return &Knowledge{embedder: embedder, searcher: searcher, cfg: cfg}
}

func (k *Knowledge) Lookup(ctx context.Context, query string) (*pipeline.Retrieval, error) {
	if k.searcher == nil || k.embedder == nil {
		return nil, ErrNoSearcher
	}
	vec, err := k.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	docs, err := k.searcher.SearchSimilar(ctx, vec, k.cfg.Limit)
	if err != nil {
		return nil, fmt.Errorf("search knowledge base: %w", err)
	}

	out := &pipeline.Retrieval{}
	var b strings.Builder
	for _, d := range docs {
		if d.Similarity < k.cfg.SimilarityThreshold {
			continue
		}
		fmt.Fprintf(&b, "### %s\n%s\n", d.Title, strings.TrimSpace(d.Content))
		if d.URL != "" {
			fmt.Fprintf(&b, "Source: %s\n", d.URL)
		}
		b.WriteString("\n")

		out.Sources = append(out.Sources, sources.Source{
			Title:   d.Title,
			URL:     d.URL,
			Snippet: snippetOf(d.Content),
			Origin:  sources.OriginKnowledgeBase,
			Score:   d.Similarity,
		})
	}
	out.Text = strings.TrimSpace(b.String())
	if out.Text == "" {
		out.Text = "No relevant documents were found in the knowledge base."
	}
	return out, nil
}

func snippetOf(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= 300 {
		return content
	}
	return string(r[:300]) + "..."
}
