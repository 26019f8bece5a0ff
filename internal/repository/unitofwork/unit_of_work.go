package unitofwork

import (
	"context"

	"ai-tutoring-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	TutorSessionRepository() contract.TutorSessionRepository
	TutorMessageRepository() contract.TutorMessageRepository
	HintRepository() contract.HintRepository
}
