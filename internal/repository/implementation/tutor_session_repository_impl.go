package implementation

import (
	"context"
	"errors"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/mapper"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"
	"ai-tutoring-be/pkg/governance/lifecycle"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TutorMapper
}

func NewTutorSessionRepository(db *gorm.DB) contract.TutorSessionRepository {
	return &TutorSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTutorMapper(),
	}
}

func (r *TutorSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TutorSessionRepositoryImpl) Create(ctx context.Context, session *entity.TutorSession) error {
	m := r.mapper.TutorSessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.TutorSessionToEntity(m)
	return nil
}

func (r *TutorSessionRepositoryImpl) Update(ctx context.Context, session *entity.TutorSession) error {
	m := r.mapper.TutorSessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.TutorSessionToEntity(m)
	return nil
}

func (r *TutorSessionRepositoryImpl) UpdateInProgress(ctx context.Context, session *entity.TutorSession) (bool, error) {
	m := r.mapper.TutorSessionToModel(session)
	result := r.db.WithContext(ctx).Model(&model.TutorSession{}).
		Select("*").
		Where("id = ? AND status = ?", m.Id, string(lifecycle.StatusInProgress)).
		Updates(m)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	*session = *r.mapper.TutorSessionToEntity(m)
	return true, nil
}

func (r *TutorSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TutorSession{}, id).Error
}

func (r *TutorSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TutorSession, error) {
	var m model.TutorSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TutorSessionToEntity(&m), nil
}

func (r *TutorSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSession, error) {
	var models []*model.TutorSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TutorSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TutorSessionToEntity(m)
	}
	return entities, nil
}

func (r *TutorSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TutorSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
