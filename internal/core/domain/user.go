package domain

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

// Staff roles. Admins manage services; staff operate queues (call next,
// serving, complete, no-show).
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a staff member who operates the admin side of the system.
// Customers joining a queue are anonymous and never become users.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// NewUser creates a staff user with a bcrypt-hashed password.
func NewUser(username, password, role string) (*User, error) {
	if username == "" {
		return nil, apperrors.ErrUsernameRequired
	}
	if len(password) < 8 {
		return nil, apperrors.ErrPasswordTooWeak
	}
	if role != RoleAdmin && role != RoleStaff {
		return nil, apperrors.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
