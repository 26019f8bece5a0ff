package serverutils

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware authenticates the bearer token and stashes the caller's
// user_id in request locals. Only HMAC-signed tokens are accepted.
func JwtMiddleware(ctx *fiber.Ctx) error {
	tokenStr, found := strings.CutPrefix(ctx.Get("Authorization"), "Bearer ")
	if !found || tokenStr == "" {
		return unauthorized(ctx, "Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return unauthorized(ctx, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return unauthorized(ctx, "Invalid claims")
	}

	ctx.Locals("user_id", claims["user_id"])
	return ctx.Next()
}

func unauthorized(ctx *fiber.Ctx, message string) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": message})
}
