package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
)

// TicketRepository is the durable store of tickets. Implementations must
// enforce the (scope, ticket number) uniqueness invariant: Insert returns
// apperrors.ErrAllocationConflict when a concurrent writer already committed
// the same number, and callers retry with a fresh number.
type TicketRepository interface {
	// NextTicketNumber atomically reserves the next number for the scope.
	// This is the store's serialization point: two concurrent calls never
	// observe the same value.
	NextTicketNumber(ctx context.Context, scope domain.ScopeKey) (int, error)

	Insert(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)

	// FindWaiting returns the waiting tickets for the scope ordered by
	// arrival time ascending.
	FindWaiting(ctx context.Context, scope domain.ScopeKey) ([]*domain.Ticket, error)

	// FindByStatus returns tickets in any of the given statuses for the
	// scope, ordered by the queue ordering key.
	FindByStatus(ctx context.Context, scope domain.ScopeKey, statuses []domain.TicketStatus) ([]*domain.Ticket, error)

	// Update persists a ticket's status, timestamps, and notes. The write
	// is compare-and-set on the expected current status: when another
	// writer moved the ticket after the caller read it, nothing is written
	// and ErrInvalidStatusTransition is returned. This guard holds across
	// API instances, where the in-process scope lock does not reach.
	Update(ctx context.Context, ticket *domain.Ticket, from domain.TicketStatus) (*domain.Ticket, error)

	// CountActive counts waiting/called/serving tickets across all day
	// buckets of a service. Used to guard service deactivation.
	CountActive(ctx context.Context, serviceID uuid.UUID) (int, error)

	// StatsByService aggregates per-status counts and the average wait of
	// completed tickets.
	StatsByService(ctx context.Context, serviceID uuid.UUID) (*domain.ServiceStats, error)
}

// ServiceRepository is the registry of queueable services.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) (*domain.Service, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error)
	ListActive(ctx context.Context) ([]*domain.Service, error)
	Update(ctx context.Context, service *domain.Service) (*domain.Service, error)
	IncrementTotalServed(ctx context.Context, id uuid.UUID) error
}

// UserRepository stores staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
