package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ApiResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the first
// failure into a readable error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed validation on %s", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
