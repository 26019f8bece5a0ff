package contract

import (
	"context"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/internal/repository/specification"
)

type HintRepository interface {
	Create(ctx context.Context, hint *entity.Hint) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Hint, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
