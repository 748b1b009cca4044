package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// QueueConfig tunes the ticketing engine.
type QueueConfig struct {
	// DailyReset scopes ticket numbers to a calendar day; when false a
	// service has a single lifetime sequence.
	DailyReset bool

	// Timezone decides where the day boundary falls. Defaults to UTC.
	Timezone *time.Location

	// AllocMaxRetries bounds the retry loop on ticket-number collisions.
	AllocMaxRetries int
}

const defaultAllocMaxRetries = 5

// QueueServiceImpl implements ports.QueueService.
type QueueServiceImpl struct {
	tickets     ports.TicketRepository
	services    ports.ServiceRepository
	broadcaster ports.EventBroadcaster
	notifier    ports.CustomerNotifier
	logger      *slog.Logger
	cfg         QueueConfig
	locks       *scopeLocks
}

var _ ports.QueueService = (*QueueServiceImpl)(nil)

// NewQueueService creates the ticketing and ordering engine.
func NewQueueService(
	tickets ports.TicketRepository,
	services ports.ServiceRepository,
	broadcaster ports.EventBroadcaster,
	notifier ports.CustomerNotifier,
	logger *slog.Logger,
	cfg QueueConfig,
) *QueueServiceImpl {
	if cfg.Timezone == nil {
		cfg.Timezone = time.UTC
	}
	if cfg.AllocMaxRetries < 1 {
		cfg.AllocMaxRetries = defaultAllocMaxRetries
	}
	return &QueueServiceImpl{
		tickets:     tickets,
		services:    services,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger,
		cfg:         cfg,
		locks:       newScopeLocks(),
	}
}

// scopeFor returns the allocation scope a new ticket for the service falls
// into right now.
func (s *QueueServiceImpl) scopeFor(serviceID uuid.UUID) domain.ScopeKey {
	scope := domain.ScopeKey{ServiceID: serviceID}
	if s.cfg.DailyReset {
		scope.DayBucket = time.Now().In(s.cfg.Timezone).Format("2006-01-02")
	}
	return scope
}

// JoinQueue allocates the next ticket number for the service's current scope
// and persists the ticket. Allocation and insert run under the per-scope lock
// so concurrent joins to the same queue serialize; a duplicate-number conflict
// from the store is retried with a fresh number.
func (s *QueueServiceImpl) JoinQueue(ctx context.Context, params ports.JoinQueueParams) (*ports.TicketView, error) {
	service, err := s.services.GetByID(ctx, params.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		return nil, apperrors.ErrServiceInactive
	}

	if params.Priority == "" {
		params.Priority = domain.PriorityNormal
	}

	scope := s.scopeFor(params.ServiceID)
	unlock := s.locks.lock(scope)
	defer unlock()

	var ticket *domain.Ticket
	for attempt := 1; ; attempt++ {
		number, err := s.tickets.NextTicketNumber(ctx, scope)
		if err != nil {
			return nil, err
		}

		candidate, err := domain.NewTicket(domain.TicketParams{
			ServiceID:     params.ServiceID,
			DayBucket:     scope.DayBucket,
			TicketNumber:  number,
			CustomerName:  params.CustomerName,
			CustomerPhone: params.CustomerPhone,
			Priority:      params.Priority,
		})
		if err != nil {
			return nil, err
		}

		ticket, err = s.tickets.Insert(ctx, candidate)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrAllocationConflict) {
			return nil, err
		}
		if attempt >= s.cfg.AllocMaxRetries {
			s.logger.ErrorContext(ctx, "ticket allocation retries exhausted",
				"scope", scope.String(), "attempts", attempt)
			return nil, err
		}

		s.logger.WarnContext(ctx, "ticket number collision, retrying",
			"scope", scope.String(), "number", number, "attempt", attempt)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
		}
	}

	view, err := s.viewOf(ctx, ticket, service)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket created",
		"ticket_id", ticket.ID, "service_id", service.ID,
		"number", ticket.TicketNumber, "priority", ticket.Priority,
		"position", view.Position)
	s.broadcaster.Broadcast(domain.NewTicketEvent(ticket))

	return view, nil
}

// GetTicketStatus returns the ticket with its position and wait estimate
// recomputed against the current waiting set.
func (s *QueueServiceImpl) GetTicketStatus(ctx context.Context, ticketID uuid.UUID) (*ports.TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	service, err := s.services.GetByID(ctx, ticket.ServiceID)
	if err != nil {
		return nil, err
	}
	return s.viewOf(ctx, ticket, service)
}

// viewOf builds the customer-facing view. Position is meaningful only while
// the ticket is still waiting; the now-serving snapshot is attached for any
// active ticket so waiting customers can see how far along the counter is.
func (s *QueueServiceImpl) viewOf(ctx context.Context, ticket *domain.Ticket, service *domain.Service) (*ports.TicketView, error) {
	view := &ports.TicketView{Ticket: ticket, ServiceName: service.Name}

	if ticket.Status == domain.StatusWaiting {
		waiting, err := s.tickets.FindWaiting(ctx, ticket.Scope())
		if err != nil {
			return nil, err
		}
		view.Position = domain.Position(ticket, waiting)
		view.EstimatedWaitMinutes = service.EstimateWait(view.Position)
	}

	if ticket.Status.IsActive() {
		serving, err := s.tickets.FindByStatus(ctx, ticket.Scope(), []domain.TicketStatus{domain.StatusServing})
		if err != nil {
			return nil, err
		}
		if len(serving) > 0 {
			snapshot := serving[0].Snapshot()
			view.NowServing = &snapshot
		}
	}

	return view, nil
}

// CallNext selects the front of the queue under the scope lock, marks it
// called, and notifies the customer. ErrEmptyQueue when nothing waits.
func (s *QueueServiceImpl) CallNext(ctx context.Context, serviceID uuid.UUID) (*domain.Ticket, error) {
	service, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	scope := s.scopeFor(serviceID)
	unlock := s.locks.lock(scope)
	defer unlock()

	waiting, err := s.tickets.FindWaiting(ctx, scope)
	if err != nil {
		return nil, err
	}
	next := domain.NextInQueue(waiting)
	if next == nil {
		return nil, apperrors.ErrEmptyQueue
	}

	if err := next.TransitionTo(domain.StatusCalled); err != nil {
		return nil, err
	}
	// Compare-and-set from waiting: if another instance called the same
	// ticket first, this write loses instead of double-calling it.
	updated, err := s.tickets.Update(ctx, next, domain.StatusWaiting)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket called",
		"ticket_id", updated.ID, "service_id", serviceID, "number", updated.TicketNumber)
	s.broadcaster.Broadcast(domain.NewTicketEvent(updated))
	s.notifyCalled(ctx, updated, service.Name)

	return updated, nil
}

// notifyCalled fires the customer notification without blocking the queue
// operation. Skipped when the ticket carries no phone number.
func (s *QueueServiceImpl) notifyCalled(ctx context.Context, ticket *domain.Ticket, serviceName string) {
	if ticket.CustomerPhone == "" {
		return
	}
	go func(ctx context.Context) {
		if err := s.notifier.NotifyCalled(ctx, ticket, serviceName); err != nil {
			s.logger.WarnContext(ctx, "customer notification failed",
				"ticket_id", ticket.ID, "error", err)
		}
	}(context.WithoutCancel(ctx))
}

// adminTargets are the statuses Transition may move a ticket into. Waiting is
// the creation state and called is reached only through CallNext.
var adminTargets = map[domain.TicketStatus]bool{
	domain.StatusServing:   true,
	domain.StatusCompleted: true,
	domain.StatusCancelled: true,
	domain.StatusNoShow:    true,
}

// Transition applies an admin status change and records notes when given.
func (s *QueueServiceImpl) Transition(ctx context.Context, params ports.TransitionParams) (*domain.Ticket, error) {
	if !adminTargets[params.Target] {
		return nil, apperrors.ErrInvalidStatus
	}

	ticket, err := s.tickets.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	from := ticket.Status
	if err := ticket.TransitionTo(params.Target); err != nil {
		return nil, err
	}
	if params.Notes != "" {
		if err := ticket.RecordNotes(params.Notes); err != nil {
			return nil, err
		}
	}

	// The write is conditional on the status still being what we read, so
	// two concurrent requests racing on one ticket cannot both commit and
	// overwrite a terminal state. The loser reports a transition conflict
	// before any side effects run.
	updated, err := s.tickets.Update(ctx, ticket, from)
	if err != nil {
		return nil, err
	}

	if params.Target == domain.StatusCompleted {
		if err := s.services.IncrementTotalServed(ctx, updated.ServiceID); err != nil {
			s.logger.WarnContext(ctx, "total served counter update failed",
				"service_id", updated.ServiceID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "ticket status changed",
		"ticket_id", updated.ID, "status", updated.Status)
	s.broadcaster.Broadcast(domain.NewTicketEvent(updated))

	return updated, nil
}

// CancelTicket is the customer-side cancellation, valid from any active state.
func (s *QueueServiceImpl) CancelTicket(ctx context.Context, ticketID uuid.UUID, reason string) (*domain.Ticket, error) {
	return s.Transition(ctx, ports.TransitionParams{
		TicketID: ticketID,
		Target:   domain.StatusCancelled,
		Notes:    reason,
	})
}

// ListQueue returns one scope's tickets in queue order. An empty status
// filter means the active statuses; an empty date means today's bucket.
// Past dates let staff find tickets stranded by the daily rollover and
// resolve them through the usual transitions.
func (s *QueueServiceImpl) ListQueue(ctx context.Context, params ports.ListQueueParams) ([]*domain.Ticket, error) {
	if _, err := s.services.GetByID(ctx, params.ServiceID); err != nil {
		return nil, err
	}

	statuses := params.Statuses
	if len(statuses) == 0 {
		statuses = []domain.TicketStatus{domain.StatusWaiting, domain.StatusCalled, domain.StatusServing}
	}
	for _, status := range statuses {
		if !status.IsValid() {
			return nil, apperrors.ErrInvalidStatus
		}
	}

	scope := s.scopeFor(params.ServiceID)
	if params.Date != "" {
		if _, err := time.Parse("2006-01-02", params.Date); err != nil {
			return nil, apperrors.NewBadRequestError(err, "Date must be formatted as YYYY-MM-DD")
		}
		if s.cfg.DailyReset {
			scope.DayBucket = params.Date
		}
	}

	tickets, err := s.tickets.FindByStatus(ctx, scope, statuses)
	if err != nil {
		return nil, err
	}
	domain.SortByOrder(tickets)
	return tickets, nil
}
