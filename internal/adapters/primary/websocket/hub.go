// Package websocket fans queue events out to browser subscribers. Each
// service has a room; clients subscribe to the service whose queue they are
// watching.
package websocket

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// subscription moves a client into a service room.
type subscription struct {
	client    *Client
	serviceID uuid.UUID
}

// Hub routes events to the clients subscribed to each service. All room
// mutation happens on the Run goroutine, so no locks are needed.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	subscribe  chan subscription
	unregister chan *Client
	events     chan domain.Event

	logger *slog.Logger
}

var _ ports.EventBroadcaster = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		subscribe:  make(chan subscription),
		unregister: make(chan *Client),
		events:     make(chan domain.Event, 256),
		logger:     logger,
	}
}

// Run processes subscriptions and event fan-out until the hub is stopped.
// Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.subscribe:
			h.moveToRoom(sub.client, sub.serviceID)

		case client := <-h.unregister:
			h.dropClient(client)

		case event := <-h.events:
			h.fanOut(event)
		}
	}
}

// Broadcast queues an event for delivery. Never blocks the caller; when the
// hub is saturated the event is dropped and logged, since clients re-sync by
// polling the status endpoint.
func (h *Hub) Broadcast(event domain.Event) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event dropped, hub saturated",
			"type", event.Type, "service_id", event.ServiceID)
	}
}

func (h *Hub) moveToRoom(client *Client, serviceID uuid.UUID) {
	h.removeFromRoom(client)

	room := h.rooms[serviceID]
	if room == nil {
		room = make(map[*Client]bool)
		h.rooms[serviceID] = room
	}
	room[client] = true
	client.serviceID = serviceID

	h.logger.Debug("client subscribed", "service_id", serviceID, "room_size", len(room))
}

// dropClient detaches a client and closes its send channel exactly once.
// Only called from the Run goroutine.
func (h *Hub) dropClient(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	h.removeFromRoom(client)
	close(client.send)
}

func (h *Hub) removeFromRoom(client *Client) {
	if client.serviceID == uuid.Nil {
		return
	}
	if room, ok := h.rooms[client.serviceID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.serviceID)
		}
	}
	client.serviceID = uuid.Nil
}

func (h *Hub) fanOut(event domain.Event) {
	room := h.rooms[event.ServiceID]
	if len(room) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshaling event", "error", err)
		return
	}

	for client := range room {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop it rather than stall the room.
			h.dropClient(client)
		}
	}
}
