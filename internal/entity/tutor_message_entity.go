package entity

import (
	"time"

	"github.com/google/uuid"
)

type TutorMessage struct {
	Id             uuid.UUID
	TutorSessionId uuid.UUID
	Role           string
	Content        string
	TokenCount     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
