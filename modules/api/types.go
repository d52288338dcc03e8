package api

import (
	"time"

	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"github.com/mmmtweb2/TodoApp/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by register, login and refresh. Token repeats the
// access token for clients that only read "token".
type AuthResponse struct {
	Token        string        `json:"token"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	TokenType    string        `json:"token_type"`
	User         user.Identity `json:"user"`
}

// ProfileResponse represents the current user.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateTaskRequest is a partial task update. Version, when set, must match
// the stored version or the update is rejected with 409.
type UpdateTaskRequest struct {
	domain.Patch
	Version int64 `json:"version,omitempty"`
}

// ShareRequest shares a task with the users registered under the emails.
type ShareRequest struct {
	Users      []string          `json:"users"`
	Permission domain.Permission `json:"permission,omitempty"`
}

// UpdateShareRequest changes a recipient's permission.
type UpdateShareRequest struct {
	Permission domain.Permission `json:"permission"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ModuleHealth is one module's entry in the health report.
type ModuleHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Modules   map[string]ModuleHealth `json:"modules,omitempty"`
}
