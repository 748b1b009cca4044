package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lorrc/queue-backend/internal/auth"
	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	users  ports.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
}

var _ ports.AuthService = (*AuthServiceImpl)(nil)

// NewAuthService creates the staff authentication service.
func NewAuthService(users ports.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, logger: logger}
}

// Login verifies credentials and issues a JWT. Unknown user and wrong
// password return the same error so usernames cannot be probed.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// EnsureAdmin seeds the bootstrap admin account on first startup.
func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	user, err := domain.NewUser(username, password, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserExists) {
			return nil
		}
		return err
	}

	s.logger.InfoContext(ctx, "bootstrap admin created", "username", username)
	return nil
}
