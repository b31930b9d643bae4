package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"info-seeker-be/internal/dto"
	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/mapper"
	"info-seeker-be/internal/pkg/logger"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/pkg/embedding"
	"info-seeker-be/pkg/retrieval"
	"info-seeker-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

var ErrKnowledgeBaseDisabled = errors.New("knowledge base is not configured")

type IDocumentService interface {
	retrieval.DocumentSearcher
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	Stats(ctx context.Context) (*dto.DocumentStatsResponse, error)
}

type documentService struct {
	repo     contract.DocumentRepository
	embedder embedding.EmbeddingProvider
	mapper   *mapper.DocumentMapper
	logger   logger.ILogger
}

func NewDocumentService(repo contract.DocumentRepository, embedder embedding.EmbeddingProvider, log logger.ILogger) IDocumentService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &documentService{
		repo:     repo,
		embedder: embedder,
		mapper:   mapper.NewDocumentMapper(),
		logger:   log,
	}
}

// Ingest chunks and embeds a document, replacing any earlier version stored
// under the same URL.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	if s.repo == nil || s.embedder == nil {
		return nil, ErrKnowledgeBaseDisabled
	}

	chunks := utils.SplitText(req.Content, chunkSize, chunkOverlap)
	docs := make([]*entity.Document, 0, len(chunks))
	now := time.Now()
	for i, chunk := range chunks {
		vec, err := s.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		docs = append(docs, &entity.Document{
			Id:         uuid.New(),
			Title:      req.Title,
			Url:        req.URL,
			Content:    chunk,
			ChunkIndex: i,
			Embedding:  vec,
			CreatedAt:  now,
		})
	}

	if err := s.repo.ReplaceByURL(ctx, req.URL, docs); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	s.logger.Info("INGEST", "Document stored", map[string]interface{}{
		"url":    req.URL,
		"chunks": len(docs),
	})
	return &dto.IngestDocumentResponse{URL: req.URL, Chunks: len(docs)}, nil
}

// SearchSimilar serves the knowledge base retriever, which applies its own
// similarity threshold.
func (s *documentService) SearchSimilar(ctx context.Context, vector []float32, limit int) ([]retrieval.Document, error) {
	if s.repo == nil {
		return nil, ErrKnowledgeBaseDisabled
	}
	scored, err := s.repo.SearchSimilarWithScore(ctx, vector, limit, 0)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToRetrieval(scored), nil
}

func (s *documentService) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	if s.repo == nil {
		return nil, ErrKnowledgeBaseDisabled
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentStatsResponse{Chunks: n}, nil
}
