package implementation

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/mapper"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"

	"gorm.io/gorm"
)

type HintRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TutorMapper
}

func NewHintRepository(db *gorm.DB) contract.HintRepository {
	return &HintRepositoryImpl{
		db:     db,
		mapper: mapper.NewTutorMapper(),
	}
}

func (r *HintRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *HintRepositoryImpl) Create(ctx context.Context, hint *entity.Hint) error {
	m := r.mapper.HintToModel(hint)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*hint = *r.mapper.HintToEntity(m)
	return nil
}

func (r *HintRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Hint, error) {
	var models []*model.Hint
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Hint, len(models))
	for i, m := range models {
		entities[i] = r.mapper.HintToEntity(m)
	}
	return entities, nil
}

func (r *HintRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Hint{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
