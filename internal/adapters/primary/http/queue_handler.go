package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/adapters/primary/validation"
	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// QueueHandler exposes the ticketing operations.
type QueueHandler struct {
	queue  ports.QueueService
	logger *slog.Logger
}

func NewQueueHandler(queue ports.QueueService, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{queue: queue, logger: logger}
}

// JoinQueueRequest is the body for taking a ticket.
type JoinQueueRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Priority      string `json:"priority"`
}

// CancelTicketRequest optionally carries a reason.
type CancelTicketRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest drives the admin status transitions.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// TicketResponse is the JSON view of a ticket. Position and estimated wait
// are present only while the ticket is waiting.
type TicketResponse struct {
	ID                   uuid.UUID  `json:"id"`
	ServiceID            uuid.UUID  `json:"serviceId"`
	ServiceName          string     `json:"serviceName,omitempty"`
	TicketNumber         int        `json:"ticketNumber"`
	CustomerName         string     `json:"customerName,omitempty"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	Position             int        `json:"position,omitempty"`
	EstimatedWaitMinutes *int       `json:"estimatedWaitMinutes,omitempty"`
	JoinedAt             time.Time  `json:"joinedAt"`
	CalledAt             *time.Time `json:"calledAt,omitempty"`
	ServedAt             *time.Time `json:"servedAt,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	Notes                string     `json:"notes,omitempty"`

	// NowServing is the ticket currently at the counter for the same
	// service, when one exists.
	NowServing *domain.TicketSnapshot `json:"nowServing,omitempty"`
}

func toTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		ServiceID:    ticket.ServiceID,
		TicketNumber: ticket.TicketNumber,
		CustomerName: ticket.CustomerName,
		Priority:     string(ticket.Priority),
		Status:       string(ticket.Status),
		JoinedAt:     ticket.JoinedAt,
		CalledAt:     ticket.CalledAt,
		ServedAt:     ticket.ServedAt,
		CompletedAt:  ticket.CompletedAt,
		Notes:        ticket.Notes,
	}
}

func toTicketViewResponse(view *ports.TicketView) TicketResponse {
	resp := toTicketResponse(view.Ticket)
	resp.ServiceName = view.ServiceName
	resp.NowServing = view.NowServing
	if view.Ticket.Status == domain.StatusWaiting {
		resp.Position = view.Position
		wait := view.EstimatedWaitMinutes
		resp.EstimatedWaitMinutes = &wait
	}
	return resp
}

// JoinQueue handles POST /api/v1/services/{serviceID}/queue
func (h *QueueHandler) JoinQueue(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	req, err := validation.DecodeAndValidate[JoinQueueRequest](r)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	v := validation.NewValidator()
	v.MaxLength("customerName", req.CustomerName, domain.MaxCustomerNameLength)
	v.Phone("customerPhone", req.CustomerPhone)
	v.OneOf("priority", req.Priority, []string{
		string(domain.PriorityNormal), string(domain.PriorityPriority), string(domain.PriorityUrgent),
	})
	if v.HasErrors() {
		HandleError(w, r, h.logger, v.Errors())
		return
	}

	view, err := h.queue.JoinQueue(r.Context(), ports.JoinQueueParams{
		ServiceID:     serviceID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Priority:      domain.TicketPriority(req.Priority),
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteCreated(w, toTicketViewResponse(view))
}

// GetTicket handles GET /api/v1/tickets/{ticketID}
func (h *QueueHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := parseUUIDParam(r, "ticketID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	view, err := h.queue.GetTicketStatus(r.Context(), ticketID)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toTicketViewResponse(view))
}

// CancelTicket handles POST /api/v1/tickets/{ticketID}/cancel
func (h *QueueHandler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := parseUUIDParam(r, "ticketID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	// The body is optional; ignore decode failures on an empty body.
	var reason string
	if req, err := validation.DecodeAndValidate[CancelTicketRequest](r); err == nil {
		reason = strings.TrimSpace(req.Reason)
	}

	ticket, err := h.queue.CancelTicket(r.Context(), ticketID, reason)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toTicketResponse(ticket))
}

// CallNext handles POST /api/v1/admin/services/{serviceID}/queue/next
func (h *QueueHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	ticket, err := h.queue.CallNext(r.Context(), serviceID)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toTicketResponse(ticket))
}

// UpdateStatus handles PATCH /api/v1/admin/tickets/{ticketID}/status
func (h *QueueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ticketID, err := parseUUIDParam(r, "ticketID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	v := validation.NewValidator()
	v.Required("status", req.Status)
	v.MaxLength("notes", req.Notes, domain.MaxNotesLength)
	if v.HasErrors() {
		HandleError(w, r, h.logger, v.Errors())
		return
	}

	ticket, err := h.queue.Transition(r.Context(), ports.TransitionParams{
		TicketID: ticketID,
		Target:   domain.TicketStatus(req.Status),
		Notes:    strings.TrimSpace(req.Notes),
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toTicketResponse(ticket))
}

// MarkServing handles POST /api/v1/admin/tickets/{ticketID}/serving
func (h *QueueHandler) MarkServing(w http.ResponseWriter, r *http.Request) {
	h.transitionTo(w, r, domain.StatusServing)
}

// CompleteTicket handles POST /api/v1/admin/tickets/{ticketID}/complete
func (h *QueueHandler) CompleteTicket(w http.ResponseWriter, r *http.Request) {
	h.transitionTo(w, r, domain.StatusCompleted)
}

// MarkNoShow handles POST /api/v1/admin/tickets/{ticketID}/no-show
func (h *QueueHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transitionTo(w, r, domain.StatusNoShow)
}

// transitionTo backs the verb-style transition routes. The body is an
// optional {"notes": ...}.
func (h *QueueHandler) transitionTo(w http.ResponseWriter, r *http.Request, target domain.TicketStatus) {
	ticketID, err := parseUUIDParam(r, "ticketID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	var notes string
	if req, err := validation.DecodeAndValidate[UpdateStatusRequest](r); err == nil {
		notes = strings.TrimSpace(req.Notes)
	}

	ticket, err := h.queue.Transition(r.Context(), ports.TransitionParams{
		TicketID: ticketID,
		Target:   target,
		Notes:    notes,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toTicketResponse(ticket))
}

// ListQueue handles GET /api/v1/admin/services/{serviceID}/queue
func (h *QueueHandler) ListQueue(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	var statuses []domain.TicketStatus
	if raw := validation.ParseStringQueryParam(r, "status"); raw != nil {
		for _, s := range strings.Split(*raw, ",") {
			statuses = append(statuses, domain.TicketStatus(strings.TrimSpace(s)))
		}
	}

	var date string
	if raw := validation.ParseStringQueryParam(r, "date"); raw != nil {
		date = *raw
	}

	tickets, err := h.queue.ListQueue(r.Context(), ports.ListQueueParams{
		ServiceID: serviceID,
		Statuses:  statuses,
		Date:      date,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	responses := make([]TicketResponse, len(tickets))
	for i, ticket := range tickets {
		responses[i] = toTicketResponse(ticket)
	}
	WriteList(w, responses)
}

// parseUUIDParam reads a UUID path parameter.
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequestError(err, "Invalid "+name)
	}
	return id, nil
}
