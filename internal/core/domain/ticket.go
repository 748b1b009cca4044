package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

// TicketStatus represents the lifecycle state of a queue ticket.
type TicketStatus string

const (
	StatusWaiting   TicketStatus = "waiting"
	StatusCalled    TicketStatus = "called"
	StatusServing   TicketStatus = "serving"
	StatusCompleted TicketStatus = "completed"
	StatusCancelled TicketStatus = "cancelled"
	StatusNoShow    TicketStatus = "no-show"
)

// IsValid reports whether the status is a known ticket status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusWaiting, StatusCalled, StatusServing, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TicketStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether a ticket in this status still occupies the queue.
func (s TicketStatus) IsActive() bool {
	switch s {
	case StatusWaiting, StatusCalled, StatusServing:
		return true
	}
	return false
}

// TicketPriority is the tier used as the primary ordering key.
type TicketPriority string

const (
	PriorityNormal   TicketPriority = "normal"
	PriorityPriority TicketPriority = "priority"
	PriorityUrgent   TicketPriority = "urgent"
)

// IsValid reports whether the priority is a known tier.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityPriority, PriorityUrgent:
		return true
	}
	return false
}

// Rank returns the numeric weight of the tier. Higher ranks sort first.
func (p TicketPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 2
	case PriorityPriority:
		return 1
	default:
		return 0
	}
}

// Validation limits for customer-supplied fields.
const (
	MaxCustomerNameLength = 100
	MaxNotesLength        = 500
)

// ScopeKey identifies the partition within which ticket numbers are unique:
// a service, optionally combined with a calendar day. DayBucket is empty when
// day scoping is disabled, otherwise the service-local date as "2006-01-02".
// Day rollover is handled purely by the key changing; there is no mutable
// reset operation to race with in-flight allocations.
type ScopeKey struct {
	ServiceID uuid.UUID
	DayBucket string
}

// String renders the scope key for use as a map key or log attribute.
func (k ScopeKey) String() string {
	if k.DayBucket == "" {
		return k.ServiceID.String()
	}
	return k.ServiceID.String() + "/" + k.DayBucket
}

// Ticket is the core domain entity: one customer's place in a service queue.
type Ticket struct {
	ID            uuid.UUID
	ServiceID     uuid.UUID
	DayBucket     string
	TicketNumber  int
	CustomerName  string
	CustomerPhone string
	Priority      TicketPriority
	Status        TicketStatus
	JoinedAt      time.Time
	CalledAt      *time.Time
	ServedAt      *time.Time
	CompletedAt   *time.Time
	Notes         string
}

// TicketParams holds the input for creating a new ticket.
type TicketParams struct {
	ServiceID     uuid.UUID
	DayBucket     string
	TicketNumber  int
	CustomerName  string
	CustomerPhone string
	Priority      TicketPriority
}

// NewTicket creates a ticket in the waiting state, validating customer input.
func NewTicket(params TicketParams) (*Ticket, error) {
	v := apperrors.NewValidationErrors()

	if params.ServiceID == uuid.Nil {
		v.Add("serviceId", "Service ID is required")
	}
	if params.TicketNumber < 1 {
		v.Add("ticketNumber", "Ticket number must be positive")
	}
	if len(params.CustomerName) > MaxCustomerNameLength {
		v.Add("customerName", "Customer name cannot exceed 100 characters")
	}
	if !params.Priority.IsValid() {
		v.Add("priority", "Priority must be one of: normal, priority, urgent")
	}

	if v.HasErrors() {
		return nil, v
	}

	return &Ticket{
		ID:            uuid.New(),
		ServiceID:     params.ServiceID,
		DayBucket:     params.DayBucket,
		TicketNumber:  params.TicketNumber,
		CustomerName:  params.CustomerName,
		CustomerPhone: params.CustomerPhone,
		Priority:      params.Priority,
		Status:        StatusWaiting,
		JoinedAt:      time.Now().UTC(),
	}, nil
}

// Scope returns the ticket's scope key.
func (t *Ticket) Scope() ScopeKey {
	return ScopeKey{ServiceID: t.ServiceID, DayBucket: t.DayBucket}
}

// validTransitions maps a status to its legal targets. Terminal states have
// no entry, so any transition out of them is rejected.
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusWaiting: {StatusCalled, StatusCancelled, StatusNoShow},
	StatusCalled:  {StatusServing, StatusCancelled, StatusNoShow},
	StatusServing: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether moving to the target status is legal.
func (t *Ticket) CanTransitionTo(target TicketStatus) bool {
	for _, allowed := range validTransitions[t.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the ticket to the target status, stamping the matching
// timestamp. The transition table is enforced here so the state machine stays
// pure and testable apart from persistence; callers persist the mutated
// ticket afterwards.
func (t *Ticket) TransitionTo(target TicketStatus) error {
	if !t.CanTransitionTo(target) {
		return apperrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	t.Status = target

	switch target {
	case StatusCalled:
		t.CalledAt = &now
	case StatusServing:
		t.ServedAt = &now
	case StatusCompleted:
		t.CompletedAt = &now
	}

	return nil
}

// RecordNotes attaches free-form notes (completion notes, cancel reason).
func (t *Ticket) RecordNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return apperrors.ErrNotesTooLong
	}
	t.Notes = notes
	return nil
}
