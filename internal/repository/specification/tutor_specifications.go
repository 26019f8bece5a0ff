package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByTutorSessionID struct {
	TutorSessionID uuid.UUID
}

func (s ByTutorSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("tutor_session_id = ?", s.TutorSessionID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// InactiveSince selects sessions without activity since the cutoff;
// used by the abandonment reconciler on startup.
type InactiveSince struct {
	Cutoff time.Time
}

func (s InactiveSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity_at < ?", s.Cutoff)
}

// CreatedOnUTCDay selects rows created on one UTC calendar day.
type CreatedOnUTCDay struct {
	Day time.Time
}

func (s CreatedOnUTCDay) Apply(db *gorm.DB) *gorm.DB {
	start := time.Date(s.Day.Year(), s.Day.Month(), s.Day.Day(), 0, 0, 0, 0, time.UTC)
	return db.Where("created_at >= ? AND created_at < ?", start, start.Add(24*time.Hour))
}
