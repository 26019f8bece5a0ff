package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleStudent UserRole = "student"
	UserRoleAdmin   UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string
	Role         UserRole
	Status       UserStatus
	// DailyLimitOverride replaces the global daily problem limit for
	// this user when set.
	DailyLimitOverride *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
