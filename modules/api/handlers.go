package api

import (
	"strconv"
	"strings"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"github.com/mmmtweb2/TodoApp/domain/user"
	"github.com/mmmtweb2/TodoApp/modules/auth"
	"github.com/mmmtweb2/TodoApp/modules/notification"
	"github.com/mmmtweb2/TodoApp/modules/task"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth          auth.AuthPort
	tasks         task.TaskPort
	notifications notification.NotificationPort
	logger        types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authPort auth.AuthPort, taskPort task.TaskPort, notificationPort notification.NotificationPort, logger types.Logger) *Handlers {
	return &Handlers{
		auth:          authPort,
		tasks:         taskPort,
		notifications: notificationPort,
		logger:        logger,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse(session))
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.JSON(authResponse(session))
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	session, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.JSON(authResponse(session))
}

// Me returns the authenticated user's profile.
func (h *Handlers) Me(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := h.auth.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.JSON(ProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
}

// SearchUsers finds share candidates by name or email, excluding the caller.
func (h *Handlers) SearchUsers(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	users, err := h.auth.SearchUsers(c.UserContext(), c.Query("query"), claims.UserID)
	if err != nil {
		return h.handleAuthError(c, err)
	}
	return c.JSON(users)
}

// CheckPermission reports what the caller may do with a task.
func (h *Handlers) CheckPermission(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	perms, err := h.tasks.CheckPermission(c.UserContext(), claims.UserID, c.Params("taskId"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(perms)
}

// ListTasks returns the caller's own tasks.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	tasks, err := h.tasks.ListOwned(c.UserContext(), claims.UserID, filterFromQuery(c))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(tasks)
}

// ListSharedWithMe returns tasks other users shared with the caller.
func (h *Handlers) ListSharedWithMe(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	tasks, err := h.tasks.ListSharedWithMe(c.UserContext(), claims.UserID, filterFromQuery(c))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(tasks)
}

// Stats returns dashboard counters over every task the caller can see.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.tasks.Stats(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(stats)
}

// CreateTask creates a task owned by the caller.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var fields domain.Fields
	if err := c.BodyParser(&fields); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := h.tasks.CreateTask(c.UserContext(), claims.UserID, fields)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetTask returns a task the caller can view.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := h.tasks.GetTask(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(view)
}

// UpdateTask applies a partial update. The expected version comes from the
// body's "version" field or, failing that, the If-Match header.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	expected := req.Version
	if expected == 0 {
		v, err := ifMatchVersion(c)
		if err != nil {
			return badRequest(c, "If-Match must be a task version")
		}
		expected = v
	}

	view, err := h.tasks.UpdateTask(c.UserContext(), claims.UserID, c.Params("id"), req.Patch, expected)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(view)
}

// AdvanceStatus moves a task to the next status in its cycle.
func (h *Handlers) AdvanceStatus(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := h.tasks.AdvanceStatus(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(view)
}

// DeleteTask removes a task. Only the owner may do this.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.tasks.DeleteTask(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Task deleted"})
}

// ShareTask shares a task with users looked up by email.
func (h *Handlers) ShareTask(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req ShareRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := h.tasks.ShareTask(c.UserContext(), claims.UserID, c.Params("id"), req.Users, req.Permission)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(view)
}

// UpdateShare changes one recipient's permission.
func (h *Handlers) UpdateShare(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req UpdateShareRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	view, err := h.tasks.UpdateShare(c.UserContext(), claims.UserID, c.Params("id"), c.Params("userId"), req.Permission)
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.JSON(view)
}

// RemoveShare revokes a recipient's access. A recipient removing themselves
// no longer sees the task, so they get a message instead.
func (h *Handlers) RemoveShare(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	view, err := h.tasks.RemoveShare(c.UserContext(), claims.UserID, c.Params("id"), c.Params("userId"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	if view == nil {
		return c.JSON(MessageResponse{Message: "Share removed"})
	}
	return c.JSON(view)
}

// Notifications returns the caller's inbox, newest first.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	claims, ok := currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return badRequest(c, "limit must not be negative")
	}

	resp, err := h.notifications.ListNotifications(c.UserContext(), claims.UserID, limit)
	if err != nil {
		return h.internalError(c, "notification request failed", err)
	}
	return c.JSON(resp)
}

func authResponse(s *user.Session) AuthResponse {
	return AuthResponse{
		Token:        s.AccessToken,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		TokenType:    s.TokenType,
		User:         s.User,
	}
}

func filterFromQuery(c *fiber.Ctx) domain.Filter {
	return domain.Filter{
		Search:   c.Query("search"),
		Category: domain.Category(c.Query("category")),
		Priority: domain.Priority(c.Query("priority")),
		Status:   domain.Status(c.Query("status")),
		SortBy:   domain.SortField(c.Query("sortBy")),
	}
}

// ifMatchVersion reads an optional version from If-Match. Quotes and a weak
// prefix are tolerated so ETag-style values work.
func ifMatchVersion(c *fiber.Ctx) (int64, error) {
	raw := strings.TrimSpace(c.Get(fiber.HeaderIfMatch))
	if raw == "" {
		return 0, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	return strconv.ParseInt(raw, 10, 64)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}
