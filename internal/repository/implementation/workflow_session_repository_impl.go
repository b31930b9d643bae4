package implementation

import (
	"context"
	"errors"

	"info-seeker-be/internal/entity"
	"info-seeker-be/internal/mapper"
	"info-seeker-be/internal/model"
	"info-seeker-be/internal/repository/contract"
	"info-seeker-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkflowSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowSessionMapper
}

func NewWorkflowSessionRepository(db *gorm.DB) contract.WorkflowSessionRepository {
	return &WorkflowSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowSessionMapper(),
	}
}

func (r *WorkflowSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkflowSessionRepositoryImpl) Upsert(ctx context.Context, session *entity.WorkflowSession) error {
	m, err := r.mapper.ToModel(session)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"workflow_name", "status", "query", "detected_language",
			"completed_at", "metadata", "result", "error_message", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	updated, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*session = *updated
	return nil
}

func (r *WorkflowSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowSession, error) {
	var m model.WorkflowSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *WorkflowSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowSession, error) {
	var models []*model.WorkflowSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WorkflowSession, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *WorkflowSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.WorkflowSession{}).Count(&count).Error
	return count, err
}
