package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/mmmtweb2/TodoApp/domain/user"
)

// AuthPort is what other modules use to reach authentication and the user
// directory.
type AuthPort interface {
	Register(ctx context.Context, name, email, password string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.Session, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SearchUsers(ctx context.Context, query, excludeUserID string) ([]domain.Identity, error)
	ResolveEmails(ctx context.Context, emails []string) ([]domain.Identity, error)
	LookupUsers(ctx context.Context, ids []string) ([]domain.Identity, error)
}

// remoteErrors lists the failures the auth services report by message. The
// adapter turns them back into sentinels so callers can use errors.Is.
var remoteErrors = []error{
	ErrInvalidCredentials,
	ErrInvalidEmail,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrNameRequired,
	ErrQueryTooShort,
	ErrUserExists,
	ErrUserNotFound,
	ErrExpiredToken,
	ErrInvalidToken,
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{container: container}
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	req := RegisterRequest{Name: name, Email: email, Password: password}
	var resp SessionResponse
	if err := call(ctx, a.container, ServiceRegister, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login signs a user in.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	req := LoginRequest{Email: email, Password: password}
	var resp SessionResponse
	if err := call(ctx, a.container, ServiceLogin, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new session.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	req := RefreshRequest{RefreshToken: refreshToken}
	var resp SessionResponse
	if err := call(ctx, a.container, ServiceRefreshToken, &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, ServiceValidateToken, &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID: resp.UserID,
		Name:   resp.Name,
		Email:  resp.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	req := GetUserRequest{UserID: userID}
	var resp GetUserResponse
	if err := call(ctx, a.container, ServiceGetUser, &req, &resp); err != nil {
		return nil, err
	}

	return &domain.User{
		ID:        resp.ID,
		Name:      resp.Name,
		Email:     resp.Email,
		CreatedAt: resp.CreatedAt,
	}, nil
}

// SearchUsers finds users by name or email fragment.
func (a *AuthAdapter) SearchUsers(ctx context.Context, query, excludeUserID string) ([]domain.Identity, error) {
	req := SearchUsersRequest{Query: query, ExcludeUserID: excludeUserID}
	return callUsers(ctx, a.container, ServiceSearchUsers, &req)
}

// ResolveEmails maps emails to registered identities.
func (a *AuthAdapter) ResolveEmails(ctx context.Context, emails []string) ([]domain.Identity, error) {
	req := ResolveEmailsRequest{Emails: emails}
	return callUsers(ctx, a.container, ServiceResolveEmails, &req)
}

// LookupUsers maps user ids to identities.
func (a *AuthAdapter) LookupUsers(ctx context.Context, ids []string) ([]domain.Identity, error) {
	req := LookupUsersRequest{IDs: ids}
	return callUsers(ctx, a.container, ServiceLookupUsers, &req)
}

func callUsers[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) ([]domain.Identity, error) {
	var resp UsersResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		return []domain.Identity{}, nil
	}
	return resp.Users, nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, remoteError(err))
	}
	return nil
}

// remoteError recovers the sentinel behind an error that crossed the service
// boundary as text. Unknown errors are returned unchanged.
func remoteError(err error) error {
	msg := err.Error()
	for _, known := range remoteErrors {
		if strings.Contains(msg, known.Error()) {
			return fmt.Errorf("%w (%s)", known, msg)
		}
	}
	return err
}
