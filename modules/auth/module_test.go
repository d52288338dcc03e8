package auth

import (
	"context"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func startModule(t *testing.T) *AuthModule {
	t.Helper()
	m := NewModule(&mockLogger{},
		WithDBPath(":memory:"),
		WithJWTConfig(testJWTConfig()),
		WithBcryptCost(bcrypt.MinCost),
	)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop(context.Background()) })
	return m
}

func TestAuthModule_Name(t *testing.T) {
	assert.Equal(t, "auth", NewModule(&mockLogger{}).Name())
}

func TestAuthModule_Health(t *testing.T) {
	m := NewModule(&mockLogger{}, WithDBPath(":memory:"))
	assert.False(t, m.Health(context.Background()).Healthy, "not started")

	m = startModule(t)
	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, ":memory:", status.Details["database"])
}

func TestAuthModule_Handlers(t *testing.T) {
	m := startModule(t)
	ctx := context.Background()

	session, err := m.handleRegister(ctx, RegisterRequest{Name: "Dana", Email: "dana@example.com", Password: "password123"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Dana", session.User.Name)

	_, err = m.handleRegister(ctx, RegisterRequest{Name: "Moshe", Email: "moshe@example.com", Password: "password123"}, nil)
	require.NoError(t, err)

	login, err := m.handleLogin(ctx, LoginRequest{Email: "dana@example.com", Password: "password123"}, nil)
	require.NoError(t, err)

	valid, err := m.handleValidateToken(ctx, ValidateTokenRequest{Token: login.AccessToken}, nil)
	require.NoError(t, err)
	assert.True(t, valid.Valid)
	assert.Equal(t, session.User.ID, valid.UserID)

	invalid, err := m.handleValidateToken(ctx, ValidateTokenRequest{Token: "bogus"}, nil)
	require.NoError(t, err, "rejected tokens are reported in the payload")
	assert.False(t, invalid.Valid)
	assert.Equal(t, ErrInvalidToken.Error(), invalid.Error)

	refreshed, err := m.handleRefresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken}, nil)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refreshed.User.ID)

	user, err := m.handleGetUser(ctx, GetUserRequest{UserID: session.User.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)

	found, err := m.handleSearchUsers(ctx, SearchUsersRequest{Query: "mos", ExcludeUserID: session.User.ID}, nil)
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, "Moshe", found.Users[0].Name)

	resolved, err := m.handleResolveEmails(ctx, ResolveEmailsRequest{Emails: []string{"MOSHE@example.com", "nobody@example.com"}}, nil)
	require.NoError(t, err)
	require.Len(t, resolved.Users, 1)

	looked, err := m.handleLookupUsers(ctx, LookupUsersRequest{IDs: []string{session.User.ID}}, nil)
	require.NoError(t, err)
	require.Len(t, looked.Users, 1)
	assert.Equal(t, "Dana", looked.Users[0].Name)
}
