package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/mmmtweb2/TodoApp/database"
	domain "github.com/mmmtweb2/TodoApp/domain/user"
	"gorm.io/gorm"
)

// AuthModule provides authentication and the user directory.
type AuthModule struct {
	db         *gorm.DB
	service    *AuthService
	dbPath     string
	jwtConfig  JWTConfig
	bcryptCost int
	logger     types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// Option configures an AuthModule.
type Option func(*AuthModule)

// WithDBPath sets the SQLite database path.
func WithDBPath(path string) Option {
	return func(m *AuthModule) { m.dbPath = path }
}

// WithJWTConfig sets the token signing configuration.
func WithJWTConfig(cfg JWTConfig) Option {
	return func(m *AuthModule) { m.jwtConfig = cfg }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(m *AuthModule) { m.bcryptCost = cost }
}

// NewModule creates a new AuthModule.
func NewModule(logger types.Logger, opts ...Option) *AuthModule {
	m := &AuthModule{
		dbPath:     "tasks.db",
		jwtConfig:  DefaultJWTConfig(),
		bcryptCost: DefaultBcryptCost,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	db, err := database.Open(m.dbPath, &domain.User{})
	if err != nil {
		return err
	}
	m.db = db

	m.service = NewAuthService(
		NewUserRepository(db),
		NewPasswordHasher(m.bcryptCost),
		NewJWTManager(m.jwtConfig),
	)

	m.logger.Info("Auth module started", "database", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *AuthModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		m.logger.Error("Failed to close auth database", "error", err)
		return err
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if err := database.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRegister, json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRegister, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLogin, json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLogin, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRefreshToken, json.Unmarshal, json.Marshal, m.handleRefresh,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRefreshToken, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceValidateToken, json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceValidateToken, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUser, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceSearchUsers, json.Unmarshal, json.Marshal, m.handleSearchUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceSearchUsers, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceResolveEmails, json.Unmarshal, json.Marshal, m.handleResolveEmails,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceResolveEmails, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLookupUsers, json.Unmarshal, json.Marshal, m.handleLookupUsers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLookupUsers, err)
	}

	m.logger.Info("Registered auth services",
		"services", []string{
			ServiceRegister, ServiceLogin, ServiceRefreshToken, ServiceValidateToken,
			ServiceGetUser, ServiceSearchUsers, ServiceResolveEmails, ServiceLookupUsers,
		})
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	m.logger.Info("User registered", "user_id", session.User.ID)
	return *session, nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	return *session, nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return SessionResponse{}, err
	}
	return *session, nil
}

// handleValidateToken reports rejected tokens in the payload; only storage
// failures travel as errors.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			return ValidateTokenResponse{Valid: false, Error: ErrExpiredToken.Error()}, nil
		case errors.Is(err, ErrInvalidToken):
			return ValidateTokenResponse{Valid: false, Error: ErrInvalidToken.Error()}, nil
		default:
			return ValidateTokenResponse{}, err
		}
	}

	return ValidateTokenResponse{
		Valid:  true,
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
	}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (GetUserResponse, error) {
	user, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return GetUserResponse{}, err
	}
	return GetUserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (m *AuthModule) handleSearchUsers(ctx context.Context, req SearchUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.SearchUsers(ctx, req.Query, req.ExcludeUserID)
	if err != nil {
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users}, nil
}

func (m *AuthModule) handleResolveEmails(ctx context.Context, req ResolveEmailsRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.ResolveEmails(ctx, req.Emails)
	if err != nil {
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users}, nil
}

func (m *AuthModule) handleLookupUsers(ctx context.Context, req LookupUsersRequest, _ *mono.Msg) (UsersResponse, error) {
	users, err := m.service.LookupUsers(ctx, req.IDs)
	if err != nil {
		return UsersResponse{}, err
	}
	return UsersResponse{Users: users}, nil
}
