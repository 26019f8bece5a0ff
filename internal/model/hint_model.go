package model

import (
	"time"

	"github.com/google/uuid"
)

type Hint struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TutorSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Level          int       `gorm:"not null"`
	Content        string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Hint) TableName() string {
	return "hints"
}
