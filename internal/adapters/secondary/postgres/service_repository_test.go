package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

func TestServiceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewServiceRepository(testPool)

	service, err := domain.NewService(domain.ServiceParams{
		Name:                 "X-Ray Room",
		Description:          "Radiology",
		EstimatedServiceTime: 15,
	})
	require.NoError(t, err)
	service.QRCode = "png-bytes"
	service.QRCodeURL = "https://queue.example.com/queue/" + service.ID.String()

	_, err = repo.Create(ctx, service)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, service.ID)
		require.NoError(t, err)

		assert.Equal(t, "X-Ray Room", fetched.Name)
		assert.Equal(t, "Radiology", fetched.Description)
		assert.Equal(t, 15, fetched.EstimatedServiceTime)
		assert.Equal(t, "png-bytes", fetched.QRCode)
		assert.True(t, fetched.IsActive)
		assert.Nil(t, fetched.UpdatedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, apperrors.ErrServiceNotFound)
	})

	t.Run("increment total served", func(t *testing.T) {
		require.NoError(t, repo.IncrementTotalServed(ctx, service.ID))
		require.NoError(t, repo.IncrementTotalServed(ctx, service.ID))

		fetched, err := repo.GetByID(ctx, service.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.TotalServed)
	})

	t.Run("deactivation removes from active list", func(t *testing.T) {
		service.Deactivate()
		_, err := repo.Update(ctx, service)
		require.NoError(t, err)

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		for _, s := range active {
			assert.NotEqual(t, service.ID, s.ID)
		}
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	user, err := domain.NewUser("operator1", "long-password", domain.RoleStaff)
	require.NoError(t, err)

	_, err = repo.Create(ctx, user)
	require.NoError(t, err)

	t.Run("fetch by username", func(t *testing.T) {
		fetched, err := repo.GetByUsername(ctx, "operator1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, fetched.ID)
		assert.True(t, fetched.CheckPassword("long-password"))
	})

	t.Run("duplicate username", func(t *testing.T) {
		dup, err := domain.NewUser("operator1", "other-password", domain.RoleStaff)
		require.NoError(t, err)

		_, err = repo.Create(ctx, dup)
		require.ErrorIs(t, err, apperrors.ErrUserExists)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "ghost")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
