package serverutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"ai-tutoring-be/internal/dto"
)

func newTestApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/probe", handler)
	return app
}

func TestErrorHandlerRejections(t *testing.T) {
	resetAt := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantErrorType string
		wantRetryHdr  string
	}{
		{
			name:          "rate limit maps to 429 with Retry-After",
			err:           dto.NewRateLimitError(30, 2*time.Second),
			wantStatus:    429,
			wantErrorType: dto.RejectionRateLimit,
			wantRetryHdr:  "2",
		},
		{
			name:          "daily limit maps to 429 without Retry-After",
			err:           dto.NewDailyLimitError(20, 20, resetAt),
			wantStatus:    429,
			wantErrorType: dto.RejectionDailyLimit,
			wantRetryHdr:  "",
		},
		{
			name:          "session limit maps to 403",
			err:           dto.NewSessionLimitError(50, 50),
			wantStatus:    403,
			wantErrorType: dto.RejectionSessionLimit,
			wantRetryHdr:  "",
		},
		{
			name:          "token limit maps to 413",
			err:           dto.NewTokenLimitError(3000, 3104),
			wantStatus:    413,
			wantErrorType: dto.RejectionTokenLimit,
			wantRetryHdr:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(func(c *fiber.Ctx) error {
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantRetryHdr, resp.Header.Get("Retry-After"))

			var body dto.RejectionResponse
			assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantErrorType, body.ErrorType)
		})
	}
}

func TestErrorHandlerFiberError(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "session not found", body["message"])
}

func TestErrorHandlerUnknownError(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["message"])
}

func TestErrorHandlerPassThrough(t *testing.T) {
	app := newTestApp(func(c *fiber.Ctx) error {
		return c.JSON(SuccessResponse("ok", "payload"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Retry-After"))
}
