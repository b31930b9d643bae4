package mapper

import (
	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/model"
	"info-seeker-be/pkg/retrieval"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:         d.Id,
		Title:      d.Title,
		Url:        d.Url,
		Content:    d.Content,
		ChunkIndex: d.ChunkIndex,
		Embedding:  d.Embedding.Slice(),
		CreatedAt:  d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:         d.Id,
		Title:      d.Title,
		Url:        d.Url,
		Content:    d.Content,
		ChunkIndex: d.ChunkIndex,
		Embedding:  pgvector.NewVector(d.Embedding),
		CreatedAt:  d.CreatedAt,
	}
}

func (m *DocumentMapper) ToModels(docs []*entity.Document) []*model.Document {
	models := make([]*model.Document, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}

// ToRetrieval converts scored rows into knowledge base search hits.
func (m *DocumentMapper) ToRetrieval(scored []*entity.ScoredDocument) []retrieval.Document {
	out := make([]retrieval.Document, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Document == nil {
			continue
		}
		out = append(out, retrieval.Document{
			Title:      s.Document.Title,
			URL:        s.Document.Url,
			Content:    s.Document.Content,
			Similarity: s.Similarity,
		})
	}
	return out
}
