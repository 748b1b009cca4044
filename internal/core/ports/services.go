package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
)

// JoinQueueParams is the customer-facing input for taking a ticket.
type JoinQueueParams struct {
	ServiceID     uuid.UUID
	CustomerName  string
	CustomerPhone string
	Priority      domain.TicketPriority
}

// TicketView is a ticket together with its live queue standing. Position and
// EstimatedWaitMinutes are zero for tickets no longer waiting. NowServing is
// the ticket currently at the counter, when there is one.
type TicketView struct {
	Ticket               *domain.Ticket
	ServiceName          string
	Position             int
	EstimatedWaitMinutes int
	NowServing           *domain.TicketSnapshot
}

// TransitionParams drives an admin-side status change on a ticket.
type TransitionParams struct {
	TicketID uuid.UUID
	Target   domain.TicketStatus

	// Notes carries completion notes or a cancellation reason.
	Notes string
}

// ListQueueParams filters the admin queue listing.
type ListQueueParams struct {
	ServiceID uuid.UUID

	// Statuses filters the listing; empty means the active statuses.
	Statuses []domain.TicketStatus

	// Date selects a day bucket as "2006-01-02"; empty means today.
	// Lets staff reach tickets left behind by the daily rollover.
	Date string
}

// QueueService is the ticketing and ordering engine.
type QueueService interface {
	// JoinQueue allocates a ticket number and enqueues a new ticket.
	JoinQueue(ctx context.Context, params JoinQueueParams) (*TicketView, error)

	// GetTicketStatus returns a ticket with its freshly computed position
	// and wait estimate.
	GetTicketStatus(ctx context.Context, ticketID uuid.UUID) (*TicketView, error)

	// CallNext moves the front waiting ticket to called and returns it.
	// Returns ErrEmptyQueue when nothing is waiting.
	CallNext(ctx context.Context, serviceID uuid.UUID) (*domain.Ticket, error)

	// Transition applies an admin status change (serving, completed,
	// cancelled, no-show). Waiting and called are not valid targets here;
	// called is reached only through CallNext.
	Transition(ctx context.Context, params TransitionParams) (*domain.Ticket, error)

	// CancelTicket is the customer-side cancellation of a ticket.
	CancelTicket(ctx context.Context, ticketID uuid.UUID, reason string) (*domain.Ticket, error)

	// ListQueue returns the current scope's tickets in queue order.
	ListQueue(ctx context.Context, params ListQueueParams) ([]*domain.Ticket, error)
}

// UpdateServiceParams carries a partial service update. Nil fields are left
// unchanged.
type UpdateServiceParams struct {
	ServiceID            uuid.UUID
	Name                 *string
	Description          *string
	EstimatedServiceTime *int
}

// CatalogService manages the registry of queueable services.
type CatalogService interface {
	CreateService(ctx context.Context, params domain.ServiceParams) (*domain.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error)
	ListServices(ctx context.Context) ([]*domain.Service, error)
	UpdateService(ctx context.Context, params UpdateServiceParams) (*domain.Service, error)

	// DeactivateService soft-deletes a service. Rejected with
	// ErrServiceHasTickets while active tickets remain.
	DeactivateService(ctx context.Context, id uuid.UUID) error

	GetServiceStats(ctx context.Context, id uuid.UUID) (*domain.ServiceStats, error)
}

// AuthService authenticates staff users.
type AuthService interface {
	// Login verifies credentials and returns the user plus a signed JWT.
	Login(ctx context.Context, username, password string) (*domain.User, string, error)

	// EnsureAdmin creates the bootstrap admin account when it does not
	// exist yet. Called once at startup.
	EnsureAdmin(ctx context.Context, username, password string) error
}

// EventBroadcaster fans queue events out to real-time subscribers. Broadcast
// must not block the caller; delivery is best effort.
type EventBroadcaster interface {
	Broadcast(event domain.Event)
}

// CustomerNotifier tells a customer their ticket was called, typically over
// SMS. Failures are logged, never surfaced to the queue operation.
type CustomerNotifier interface {
	NotifyCalled(ctx context.Context, ticket *domain.Ticket, serviceName string) error
}

// QRGenerator renders a join URL as a QR code image.
type QRGenerator interface {
	// GeneratePNG returns the base64-encoded PNG for the given URL.
	GeneratePNG(url string, size int) (string, error)
}
