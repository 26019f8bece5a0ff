package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TutorSession struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	ProblemStatement string    `gorm:"type:text;not null"`
	ProblemType      string    `gorm:"type:varchar(50);not null;default:'general'"`
	Status           string    `gorm:"type:varchar(50);not null;default:'in-progress';index"`
	TurnCount        int       `gorm:"default:0"`
	StuckLevel       int       `gorm:"default:0"`
	LastHintLevel    int       `gorm:"default:0"`
	CompletionReason string    `gorm:"type:varchar(100)"`
	Metadata         datatypes.JSON `gorm:"type:jsonb"`
	LastActivityAt   time.Time      `gorm:"not null;index"`
	CompletedAt      *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (TutorSession) TableName() string {
	return "tutor_sessions"
}
