// Package mocks provides testify mocks for the core ports.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lorrc/queue-backend/internal/core/domain"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// MockTicketRepository mocks ports.TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

var _ ports.TicketRepository = (*MockTicketRepository)(nil)

func (m *MockTicketRepository) NextTicketNumber(ctx context.Context, scope domain.ScopeKey) (int, error) {
	args := m.Called(ctx, scope)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindWaiting(ctx context.Context, scope domain.ScopeKey) ([]*domain.Ticket, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) FindByStatus(ctx context.Context, scope domain.ScopeKey, statuses []domain.TicketStatus) ([]*domain.Ticket, error) {
	args := m.Called(ctx, scope, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, ticket *domain.Ticket, from domain.TicketStatus) (*domain.Ticket, error) {
	args := m.Called(ctx, ticket, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountActive(ctx context.Context, serviceID uuid.UUID) (int, error) {
	args := m.Called(ctx, serviceID)
	return args.Int(0), args.Error(1)
}

func (m *MockTicketRepository) StatsByService(ctx context.Context, serviceID uuid.UUID) (*domain.ServiceStats, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceStats), args.Error(1)
}

// MockServiceRepository mocks ports.ServiceRepository.
type MockServiceRepository struct {
	mock.Mock
}

var _ ports.ServiceRepository = (*MockServiceRepository)(nil)

func (m *MockServiceRepository) Create(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) ListActive(ctx context.Context) ([]*domain.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) Update(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) IncrementTotalServed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository mocks ports.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

var _ ports.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEventBroadcaster mocks ports.EventBroadcaster.
type MockEventBroadcaster struct {
	mock.Mock
}

var _ ports.EventBroadcaster = (*MockEventBroadcaster)(nil)

func (m *MockEventBroadcaster) Broadcast(event domain.Event) {
	m.Called(event)
}

// MockCustomerNotifier mocks ports.CustomerNotifier.
type MockCustomerNotifier struct {
	mock.Mock
}

var _ ports.CustomerNotifier = (*MockCustomerNotifier)(nil)

func (m *MockCustomerNotifier) NotifyCalled(ctx context.Context, ticket *domain.Ticket, serviceName string) error {
	args := m.Called(ctx, ticket, serviceName)
	return args.Error(0)
}

// MockQRGenerator mocks ports.QRGenerator.
type MockQRGenerator struct {
	mock.Mock
}

var _ ports.QRGenerator = (*MockQRGenerator)(nil)

func (m *MockQRGenerator) GeneratePNG(url string, size int) (string, error) {
	args := m.Called(url, size)
	return args.String(0), args.Error(1)
}
