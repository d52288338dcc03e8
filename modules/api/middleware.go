package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mmmtweb2/TodoApp/domain/user"
	"github.com/mmmtweb2/TodoApp/modules/auth"
	"github.com/mmmtweb2/TodoApp/modules/ratelimit"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware creates a middleware that validates bearer tokens. The
// claims are stored under UserContextKey and the user id under
// ratelimit.UserIDLocal for per-user limiting.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		claims, err := authAdapter.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserContextKey, claims)
		c.Locals(ratelimit.UserIDLocal, claims.UserID)
		return c.Next()
	}
}

// currentUser returns the claims stored by AuthMiddleware.
func currentUser(c *fiber.Ctx) (*user.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*user.Claims)
	return claims, ok && claims != nil && claims.UserID != ""
}
