// Package memory holds in-memory repository implementations backing unit
// tests and local development without a database.
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

// TicketRepository is a mutex-guarded map store. It enforces the same
// (scope, number) uniqueness contract as the Postgres implementation.
type TicketRepository struct {
	mu       sync.Mutex
	tickets  map[uuid.UUID]*domain.Ticket
	numbers  map[string]map[int]bool
	counters map[string]int
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{
		tickets:  make(map[uuid.UUID]*domain.Ticket),
		numbers:  make(map[string]map[int]bool),
		counters: make(map[string]int),
	}
}

func (r *TicketRepository) NextTicketNumber(_ context.Context, scope domain.ScopeKey) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[scope.String()]++
	return r.counters[scope.String()], nil
}

func (r *TicketRepository) Insert(_ context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ticket.Scope().String()
	taken := r.numbers[key]
	if taken == nil {
		taken = make(map[int]bool)
		r.numbers[key] = taken
	}
	if taken[ticket.TicketNumber] {
		return nil, apperrors.ErrAllocationConflict
	}
	taken[ticket.TicketNumber] = true

	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return ticket, nil
}

func (r *TicketRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	clone := *ticket
	return &clone, nil
}

func (r *TicketRepository) FindWaiting(_ context.Context, scope domain.ScopeKey) ([]*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var waiting []*domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Scope() == scope && ticket.Status == domain.StatusWaiting {
			clone := *ticket
			waiting = append(waiting, &clone)
		}
	}
	sort.Slice(waiting, func(i, j int) bool {
		if !waiting[i].JoinedAt.Equal(waiting[j].JoinedAt) {
			return waiting[i].JoinedAt.Before(waiting[j].JoinedAt)
		}
		return waiting[i].TicketNumber < waiting[j].TicketNumber
	})
	return waiting, nil
}

func (r *TicketRepository) FindByStatus(_ context.Context, scope domain.ScopeKey, statuses []domain.TicketStatus) ([]*domain.Ticket, error) {
	wanted := make(map[domain.TicketStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Scope() == scope && wanted[ticket.Status] {
			clone := *ticket
			matched = append(matched, &clone)
		}
	}
	domain.SortByOrder(matched)
	return matched, nil
}

// Update applies the same compare-and-set contract as the Postgres store:
// the write only lands while the stored status still matches from.
func (r *TicketRepository) Update(_ context.Context, ticket *domain.Ticket, from domain.TicketStatus) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	if stored.Status != from {
		return nil, apperrors.ErrInvalidStatusTransition
	}
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return ticket, nil
}

func (r *TicketRepository) CountActive(_ context.Context, serviceID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, ticket := range r.tickets {
		if ticket.ServiceID == serviceID && ticket.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *TicketRepository) StatsByService(_ context.Context, serviceID uuid.UUID) (*domain.ServiceStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &domain.ServiceStats{StatusCounts: make(map[domain.TicketStatus]int)}
	var totalWait float64
	var completed int

	for _, ticket := range r.tickets {
		if ticket.ServiceID != serviceID {
			continue
		}
		stats.StatusCounts[ticket.Status]++
		if ticket.Status == domain.StatusCompleted && ticket.ServedAt != nil {
			totalWait += ticket.ServedAt.Sub(ticket.JoinedAt).Minutes()
			completed++
		}
	}
	if completed > 0 {
		stats.AverageWaitMinutes = totalWait / float64(completed)
	}
	return stats, nil
}
