package contract

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TutorSessionRepository interface {
	Create(ctx context.Context, session *entity.TutorSession) error
	Update(ctx context.Context, session *entity.TutorSession) error
	// UpdateInProgress writes the session only while its stored status
	// is still in-progress. It reports false when a concurrent writer
	// already moved the row to a terminal status.
	UpdateInProgress(ctx context.Context, session *entity.TutorSession) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TutorSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TutorSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
