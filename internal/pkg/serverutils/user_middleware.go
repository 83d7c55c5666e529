package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// UserEmailMiddleware resolves the acting user from the X-User-Email
// header. Authentication itself runs in front of this service; the
// backend only needs the identity for session ownership.
func UserEmailMiddleware(ctx *fiber.Ctx) error {
	email := strings.TrimSpace(ctx.Get("X-User-Email"))
	if email == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing X-User-Email header"})
	}
	ctx.Locals("user_email", email)
	return ctx.Next()
}
