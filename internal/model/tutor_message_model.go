package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TutorMessage struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TutorSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Role           string    `gorm:"type:varchar(20);not null"`
	Content        string    `gorm:"type:text;not null"`
	TokenCount     int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (TutorMessage) TableName() string {
	return "tutor_messages"
}
