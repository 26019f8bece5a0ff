package implementation

import (
	"context"
	"errors"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/mapper"
	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/repository/contract"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TutorMapper
}

func NewTutorMessageRepository(db *gorm.DB) contract.TutorMessageRepository {
	return &TutorMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewTutorMapper(),
	}
}

func (r *TutorMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TutorMessageRepositoryImpl) Create(ctx context.Context, message *entity.TutorMessage) error {
	m := r.mapper.TutorMessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.TutorMessageToEntity(m)
	return nil
}

func (r *TutorMessageRepositoryImpl) CreateBatch(ctx context.Context, messages []*entity.TutorMessage) error {
	if len(messages) == 0 {
		return nil
	}
	models := make([]*model.TutorMessage, len(messages))
	for i, msg := range messages {
		models[i] = r.mapper.TutorMessageToModel(msg)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*messages[i] = *r.mapper.TutorMessageToEntity(m)
	}
	return nil
}

func (r *TutorMessageRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TutorMessage{}, id).Error
}

func (r *TutorMessageRepositoryImpl) DeleteByTutorSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("tutor_session_id = ?", sessionId).Delete(&model.TutorMessage{}).Error
}

func (r *TutorMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TutorMessage, error) {
	var m model.TutorMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TutorMessageToEntity(&m), nil
}

func (r *TutorMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorMessage, error) {
	var models []*model.TutorMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TutorMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TutorMessageToEntity(m)
	}
	return entities, nil
}

func (r *TutorMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TutorMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
