package serverutils

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ai-tutoring-be/internal/dto"
)

// ErrorHandlerMiddleware maps governance rejections onto their HTTP
// status and a structured body. Every other error becomes a plain 500
// so internals never leak to the client.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var rejection *dto.RejectionError
		if errors.As(err, &rejection) {
			if seconds := rejection.RetryAfterSeconds(); seconds > 0 {
				ctx.Set("Retry-After", strconv.Itoa(seconds))
			}
			return ctx.Status(rejection.Status).JSON(dto.RejectionResponse{
				Success:    false,
				Code:       rejection.Status,
				Message:    rejection.Message,
				ErrorType:  rejection.Kind,
				RetryAfter: rejection.RetryAfterSeconds(),
				Data:       rejection,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"code":    fiberErr.Code,
				"message": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    fiber.StatusInternalServerError,
			"message": "internal server error",
		})
	}
}
