package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-tutoring-be/pkg/governance/lifecycle"
	"ai-tutoring-be/pkg/governance/pedagogy"
)

// TutorSession is one tutoring conversation around a single problem.
// Status transitions are owned by the lifecycle package; everything
// else here is bookkeeping the governance pipeline reads per turn.
type TutorSession struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	ProblemStatement string
	ProblemType      pedagogy.ProblemType
	Status           lifecycle.Status
	TurnCount        int
	StuckLevel       pedagogy.StuckLevel
	LastHintLevel    int
	CompletionReason string
	Metadata         map[string]interface{}
	LastActivityAt   time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}
