package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of real-time queue event.
type EventType string

const (
	EventTicketCreated   EventType = "TICKET_CREATED"
	EventTicketCalled    EventType = "TICKET_CALLED"
	EventTicketServing   EventType = "TICKET_SERVING"
	EventTicketCompleted EventType = "TICKET_COMPLETED"
	EventTicketCancelled EventType = "TICKET_CANCELLED"
	EventTicketNoShow    EventType = "TICKET_NO_SHOW"
)

// TicketSnapshot is the customer-visible view of a ticket carried in events.
type TicketSnapshot struct {
	TicketID     uuid.UUID  `json:"ticketId"`
	TicketNumber int        `json:"ticketNumber"`
	CustomerName string     `json:"customerName,omitempty"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	JoinedAt     time.Time  `json:"joinedAt"`
	CalledAt     *time.Time `json:"calledAt,omitempty"`
	ServedAt     *time.Time `json:"servedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Snapshot builds the event payload view of a ticket.
func (t *Ticket) Snapshot() TicketSnapshot {
	return TicketSnapshot{
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		CustomerName: t.CustomerName,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		JoinedAt:     t.JoinedAt,
		CalledAt:     t.CalledAt,
		ServedAt:     t.ServedAt,
		CompletedAt:  t.CompletedAt,
	}
}

// Event is the payload sent over WebSocket to subscribers of a service's
// queue channel. ServiceID routes the event to the right room.
type Event struct {
	Type      EventType      `json:"type"`
	ServiceID uuid.UUID      `json:"serviceId"`
	Ticket    TicketSnapshot `json:"ticket"`
}

// eventForStatus maps a post-transition status to its event type.
var eventForStatus = map[TicketStatus]EventType{
	StatusWaiting:   EventTicketCreated,
	StatusCalled:    EventTicketCalled,
	StatusServing:   EventTicketServing,
	StatusCompleted: EventTicketCompleted,
	StatusCancelled: EventTicketCancelled,
	StatusNoShow:    EventTicketNoShow,
}

// NewTicketEvent builds the event announcing the ticket's current status.
func NewTicketEvent(ticket *Ticket) Event {
	return Event{
		Type:      eventForStatus[ticket.Status],
		ServiceID: ticket.ServiceID,
		Ticket:    ticket.Snapshot(),
	}
}
