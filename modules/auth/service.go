package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	domain "github.com/mmmtweb2/TodoApp/domain/user"
)

// SearchLimit caps the number of users a search returns.
const SearchLimit = 10

// MinSearchQueryLength is the shortest accepted search query, in characters.
const MinSearchQueryLength = 2

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when password is too weak.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrNameRequired is returned when registration has no display name.
	ErrNameRequired = errors.New("name is required")
	// ErrQueryTooShort is returned for user searches under two characters.
	ErrQueryTooShort = errors.New("search query must be at least 2 characters")
)

// AuthService handles authentication and the user directory.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Register creates a new account and signs the user in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email = domain.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.newSession(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.newSession(user)
}

// RefreshTokens exchanges a refresh token for a new token pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.Session, error) {
	claims, err := s.jwt.Verify(refreshToken, KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.newSession(user)
}

// ValidateToken checks an access token and that its user still exists.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.Verify(token, KindAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return &domain.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// SearchUsers finds other users by a fragment of their name or email.
func (s *AuthService) SearchUsers(ctx context.Context, query, excludeUserID string) ([]domain.Identity, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchQueryLength {
		return nil, ErrQueryTooShort
	}

	users, err := s.repo.Search(ctx, query, excludeUserID, SearchLimit)
	if err != nil {
		return nil, err
	}
	return identities(users), nil
}

// ResolveEmails maps email addresses to registered users. Unknown
// addresses are dropped, and each user appears once.
func (s *AuthService) ResolveEmails(ctx context.Context, emails []string) ([]domain.Identity, error) {
	users, err := s.repo.FindByEmails(ctx, emails)
	if err != nil {
		return nil, err
	}
	return identities(users), nil
}

// LookupUsers returns the public identities of the given user ids.
func (s *AuthService) LookupUsers(ctx context.Context, ids []string) ([]domain.Identity, error) {
	users, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return identities(users), nil
}

func (s *AuthService) newSession(user *domain.User) (*domain.Session, error) {
	accessToken, err := s.jwt.Issue(KindAccess, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwt.Issue(KindRefresh, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.Session{
		User: user.Identity(),
		TokenPair: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    s.jwt.AccessTokenDuration(),
			TokenType:    "Bearer",
		},
	}, nil
}

func identities(users []domain.User) []domain.Identity {
	out := make([]domain.Identity, 0, len(users))
	for i := range users {
		out = append(out, users[i].Identity())
	}
	return out
}
