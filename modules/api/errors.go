package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"github.com/mmmtweb2/TodoApp/modules/auth"
)

// errorMapping ties a sentinel to its HTTP status and error code.
type errorMapping struct {
	target error
	status int
	code   string
}

var taskErrors = []errorMapping{
	{domain.ErrValidation, fiber.StatusBadRequest, "validation_error"},
	{domain.ErrAlreadyShared, fiber.StatusBadRequest, "already_shared"},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "forbidden"},
	{domain.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{domain.ErrShareNotFound, fiber.StatusNotFound, "share_not_found"},
	{domain.ErrNoRecipientsFound, fiber.StatusNotFound, "no_recipients"},
	{domain.ErrConflict, fiber.StatusConflict, "conflict"},
}

var authErrors = []errorMapping{
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrExpiredToken, fiber.StatusUnauthorized, "unauthorized"},
	{auth.ErrUserExists, fiber.StatusConflict, "conflict"},
	{auth.ErrInvalidEmail, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrWeakPassword, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrPasswordTooLong, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrNameRequired, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrQueryTooShort, fiber.StatusBadRequest, "bad_request"},
	{auth.ErrUserNotFound, fiber.StatusNotFound, "not_found"},
}

// handleTaskError converts task failures to HTTP responses. Domain errors
// keep their detail; anything else is logged and reported as a 500.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	for _, m := range taskErrors {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(ErrorResponse{Error: m.code, Message: err.Error()})
		}
	}
	return h.internalError(c, "task request failed", err)
}

// handleAuthError converts auth failures to HTTP responses. Auth errors
// arrive wrapped in transport text, so only the sentinel message is echoed.
func (h *Handlers) handleAuthError(c *fiber.Ctx, err error) error {
	for _, m := range authErrors {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(ErrorResponse{Error: m.code, Message: m.target.Error()})
		}
	}
	return h.internalError(c, "auth request failed", err)
}

func (h *Handlers) internalError(c *fiber.Ctx, msg string, err error) error {
	h.logger.Error(msg, "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: "An unexpected error occurred",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}
