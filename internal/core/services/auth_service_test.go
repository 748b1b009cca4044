package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/queue-backend/internal/adapters/secondary/memory"
	"github.com/lorrc/queue-backend/internal/auth"
	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

func newAuthFixture(t *testing.T) (*AuthServiceImpl, *memory.UserRepository, *auth.TokenManager) {
	t.Helper()

	users := memory.NewUserRepository()
	tokens := auth.NewTokenManager("test-secret-key", time.Hour)
	return NewAuthService(users, tokens, testLogger()), users, tokens
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, tokens := newAuthFixture(t)

	admin, err := domain.NewUser("admin", "correct-horse", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = users.Create(ctx, admin)
	require.NoError(t, err)

	t.Run("valid credentials yield a token", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "admin", "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, admin.ID, user.ID)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, admin.ID, claims.UserID)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "admin", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user maps to the same error", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody", "whatever")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("inactive user is rejected", func(t *testing.T) {
		inactive, err := domain.NewUser("former", "long-password", domain.RoleStaff)
		require.NoError(t, err)
		inactive.IsActive = false
		_, err = users.Create(ctx, inactive)
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "former", "long-password")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthFixture(t)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "bootstrap-pass"))

	created, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, created.Role)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, svc.EnsureAdmin(ctx, "admin", "different-pass"))

		again, err := users.GetByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID, "existing admin must not be replaced")
	})

	t.Run("weak bootstrap password", func(t *testing.T) {
		err := svc.EnsureAdmin(ctx, "admin2", "short")
		require.ErrorIs(t, err, apperrors.ErrPasswordTooWeak)
	})
}

func TestTokenManager(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-key", time.Hour)

	user, err := domain.NewUser("staff1", "password123", domain.RoleStaff)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := tokens.GenerateToken(user)
		require.NoError(t, err)

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "staff1", claims.Username)
	})

	t.Run("tampered token", func(t *testing.T) {
		token, err := tokens.GenerateToken(user)
		require.NoError(t, err)

		_, err = tokens.ValidateToken(token + "x")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := auth.NewTokenManager("test-secret-key", -time.Minute)
		token, err := shortLived.GenerateToken(user)
		require.NoError(t, err)

		_, err = tokens.ValidateToken(token)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
