package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// ServiceRepository is the in-memory service registry.
type ServiceRepository struct {
	mu       sync.Mutex
	services map[uuid.UUID]*domain.Service
}

var _ ports.ServiceRepository = (*ServiceRepository)(nil)

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{services: make(map[uuid.UUID]*domain.Service)}
}

func (r *ServiceRepository) Create(_ context.Context, service *domain.Service) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *service
	r.services[service.ID] = &clone
	return service, nil
}

func (r *ServiceRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	service, ok := r.services[id]
	if !ok {
		return nil, apperrors.ErrServiceNotFound
	}
	clone := *service
	return &clone, nil
}

func (r *ServiceRepository) ListActive(_ context.Context) ([]*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*domain.Service
	for _, service := range r.services {
		if service.IsActive {
			clone := *service
			active = append(active, &clone)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active, nil
}

func (r *ServiceRepository) Update(_ context.Context, service *domain.Service) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		return nil, apperrors.ErrServiceNotFound
	}
	clone := *service
	r.services[service.ID] = &clone
	return service, nil
}

func (r *ServiceRepository) IncrementTotalServed(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	service, ok := r.services[id]
	if !ok {
		return apperrors.ErrServiceNotFound
	}
	service.TotalServed++
	return nil
}

// UserRepository is the in-memory staff account store.
type UserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return nil, apperrors.ErrUserExists
	}
	clone := *user
	r.users[user.Username] = &clone
	return user, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
