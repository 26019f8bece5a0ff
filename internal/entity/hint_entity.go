package entity

import (
	"time"

	"github.com/google/uuid"
)

// Hint records a hint delivered during a session so the advisor can
// suppress repeats and analytics can track escalation.
type Hint struct {
	Id             uuid.UUID
	TutorSessionId uuid.UUID
	Level          int
	Content        string
	CreatedAt      time.Time
}
