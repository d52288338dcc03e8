package auth

import (
	"time"

	domain "github.com/mmmtweb2/TodoApp/domain/user"
)

// Service names registered by the auth module.
const (
	ServiceRegister      = "register"
	ServiceLogin         = "login"
	ServiceRefreshToken  = "refresh-token"
	ServiceValidateToken = "validate-token"
	ServiceGetUser       = "get-user"
	ServiceSearchUsers   = "search-users"
	ServiceResolveEmails = "resolve-emails"
	ServiceLookupUsers   = "lookup-users"
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

// SessionResponse is returned by register, login and refresh-token.
type SessionResponse = domain.Session

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse represents a get user response.
type GetUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchUsersRequest asks for users matching a name or email fragment.
type SearchUsersRequest struct {
	Query         string `json:"query"`
	ExcludeUserID string `json:"exclude_user_id"`
}

// ResolveEmailsRequest asks which of the given emails belong to users.
type ResolveEmailsRequest struct {
	Emails []string `json:"emails"`
}

// LookupUsersRequest asks for the identities behind user ids.
type LookupUsersRequest struct {
	IDs []string `json:"ids"`
}

// UsersResponse carries a list of public identities.
type UsersResponse struct {
	Users []domain.Identity `json:"users"`
}
