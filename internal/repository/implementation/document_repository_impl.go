package implementation

import (
	"context"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/mapper"
	"info-seeker-be/internal/model"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/repository/scope"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) ReplaceByURL(ctx context.Context, url string, docs []*entity.Document) error {
	models := r.mapper.ToModels(docs)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("url = ?", url).Delete(&model.Document{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(models).Error; err != nil {
			return err
		}
		for i, m := range models {
			*docs[i] = *r.mapper.ToEntity(m)
		}
		return nil
	})
}

func (r *DocumentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector's <=> is cosine distance, so similarity = 1 - distance.
	type result struct {
		model.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("documents").
		Scopes(scope.ExcludeSoftDelete).
		Select("documents.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredDocument, len(results))
	for i := range results {
		scored[i] = &entity.ScoredDocument{
			Document:   r.mapper.ToEntity(&results[i].Document),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Document{}).Count(&count).Error
	return count, err
}
