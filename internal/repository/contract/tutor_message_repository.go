package contract

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TutorMessageRepository interface {
	Create(ctx context.Context, message *entity.TutorMessage) error
	CreateBatch(ctx context.Context, messages []*entity.TutorMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTutorSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TutorMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
