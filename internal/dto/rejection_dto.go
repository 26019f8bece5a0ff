package dto

import (
	"time"
)

// Rejection kinds returned by the governance pipeline. The kind tells
// the client which limit fired and whether retrying can ever succeed.
const (
	RejectionRateLimit    = "RATE_LIMIT"
	RejectionDailyLimit   = "DAILY_LIMIT_EXCEEDED"
	RejectionSessionLimit = "SESSION_LIMIT_REACHED"
	RejectionTokenLimit   = "TOKEN_LIMIT_EXCEEDED"
)

// RejectionError is a governance rejection that carries enough detail
// for the client to render the right message and retry behavior. It
// flows as a regular error through the service layer and is mapped to
// its HTTP status by the error handler middleware.
type RejectionError struct {
	Kind       string        `json:"error_type"`
	Status     int           `json:"-"`
	Message    string        `json:"message"`
	Limit      int           `json:"limit,omitempty"`
	Current    int           `json:"current,omitempty"`
	RetryAfter time.Duration `json:"-"`
	ResetAt    *time.Time    `json:"reset_at,omitempty"`
}

func (e *RejectionError) Error() string {
	return e.Message
}

// RetryAfterSeconds is what goes into the Retry-After header and the
// JSON payload.
func (e *RejectionError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(e.RetryAfter.Seconds())
}

func NewRateLimitError(limit int, retryAfter time.Duration) *RejectionError {
	return &RejectionError{
		Kind:       RejectionRateLimit,
		Status:     429,
		Message:    "too many requests, slow down",
		Limit:      limit,
		RetryAfter: retryAfter,
	}
}

func NewDailyLimitError(limit, current int, resetAt time.Time) *RejectionError {
	return &RejectionError{
		Kind:    RejectionDailyLimit,
		Status:  429,
		Message: "daily problem limit reached",
		Limit:   limit,
		Current: current,
		ResetAt: &resetAt,
	}
}

func NewSessionLimitError(limit, current int) *RejectionError {
	return &RejectionError{
		Kind:    RejectionSessionLimit,
		Status:  403,
		Message: "session turn limit reached",
		Limit:   limit,
		Current: current,
	}
}

func NewTokenLimitError(limit, current int) *RejectionError {
	return &RejectionError{
		Kind:    RejectionTokenLimit,
		Status:  413,
		Message: "message too large for the session token budget",
		Limit:   limit,
		Current: current,
	}
}

// RejectionResponse is the JSON body for governance rejections.
type RejectionResponse struct {
	Success    bool        `json:"success"`
	Code       int         `json:"code"`
	Message    string      `json:"message"`
	ErrorType  string      `json:"error_type"`
	RetryAfter int         `json:"retry_after,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}
