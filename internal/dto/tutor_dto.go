package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	ProblemStatement string `json:"problem_statement" validate:"required,min=10"`
}

type CreateSessionResponse struct {
	Id          uuid.UUID `json:"id"`
	ProblemType string    `json:"problem_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type GetAllSessionsResponse struct {
	Id               uuid.UUID  `json:"id"`
	ProblemStatement string     `json:"problem_statement"`
	ProblemType      string     `json:"problem_type"`
	Status           string     `json:"status"`
	TurnCount        int        `json:"turn_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type GetTurnHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendTurnRequest struct {
	TutorSessionId uuid.UUID `json:"tutor_session_id" validate:"required"`
	Content        string    `json:"content" validate:"required"`
}

type TurnMessage struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type HintDTO struct {
	Level   int    `json:"level"`
	Content string `json:"content,omitempty"`
}

type CompletionDTO struct {
	IsComplete bool    `json:"is_complete"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

type GovernanceDTO struct {
	TurnsUsed      int     `json:"turns_used"`
	TurnsRemaining int     `json:"turns_remaining"`
	TurnWarning    bool    `json:"turn_warning"`
	StuckLevel     string  `json:"stuck_level"`
	TokensUsed     int     `json:"tokens_used"`
	TokenWarning   bool    `json:"token_warning"`
	BudgetPercent  float64 `json:"budget_percent"`
}

type SendTurnResponse struct {
	TutorSessionId uuid.UUID      `json:"tutor_session_id"`
	Status         string         `json:"status"`
	Sent           *TurnMessage   `json:"sent"`
	Reply          *TurnMessage   `json:"reply"`
	Hint           *HintDTO       `json:"hint,omitempty"`
	Completion     *CompletionDTO `json:"completion,omitempty"`
	Governance     GovernanceDTO  `json:"governance"`
}

type DeleteSessionRequest struct {
	TutorSessionId uuid.UUID `json:"tutor_session_id"`
}

// UsageResponse is the advisory usage report. None of it is
// authoritative; enforcement happens per turn.
type UsageResponse struct {
	RateLimitRemaining int        `json:"rate_limit_remaining"`
	RateLimit          int        `json:"rate_limit"`
	DailyUsed          int        `json:"daily_used"`
	DailyLimit         int        `json:"daily_limit"`
	DailyResetAt       time.Time  `json:"daily_reset_at"`
	ActiveSessions     int        `json:"active_sessions"`
	LastSessionAt      *time.Time `json:"last_session_at,omitempty"`
}
