package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/queue-backend/internal/core/domain"
)

func testHubServer(t *testing.T) (*Hub, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	go hub.Run()

	server := httptest.NewServer(ServeWS(hub, logger))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func waitingTicket(serviceID uuid.UUID) *domain.Ticket {
	return &domain.Ticket{
		ID:           uuid.New(),
		ServiceID:    serviceID,
		TicketNumber: 1,
		Priority:     domain.PriorityNormal,
		Status:       domain.StatusWaiting,
		JoinedAt:     time.Now().UTC(),
	}
}

func TestHubRoutesEventsByService(t *testing.T) {
	hub, url := testHubServer(t)

	serviceA := uuid.New()
	serviceB := uuid.New()

	subscriberA := dial(t, url+"?serviceId="+serviceA.String())
	subscriberB := dial(t, url+"?serviceId="+serviceB.String())

	// Give the server a moment to register both subscriptions.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(domain.NewTicketEvent(waitingTicket(serviceA)))

	event := readEvent(t, subscriberA)
	assert.Equal(t, domain.EventTicketCreated, event.Type)
	assert.Equal(t, serviceA, event.ServiceID)

	// The other room must stay silent.
	require.NoError(t, subscriberB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := subscriberB.ReadMessage()
	require.Error(t, err)
}

func TestHubSubscribeMessage(t *testing.T) {
	hub, url := testHubServer(t)

	serviceID := uuid.New()
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(clientMessage{
		Type:      messageSubscribe,
		ServiceID: serviceID.String(),
	}))
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(domain.NewTicketEvent(waitingTicket(serviceID)))

	event := readEvent(t, conn)
	assert.Equal(t, serviceID, event.ServiceID)
}

func TestHubResubscribeSwitchesRoom(t *testing.T) {
	hub, url := testHubServer(t)

	oldService := uuid.New()
	newService := uuid.New()

	conn := dial(t, url+"?serviceId="+oldService.String())
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, conn.WriteJSON(clientMessage{
		Type:      messageSubscribe,
		ServiceID: newService.String(),
	}))
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(domain.NewTicketEvent(waitingTicket(oldService)))
	hub.Broadcast(domain.NewTicketEvent(waitingTicket(newService)))

	event := readEvent(t, conn)
	assert.Equal(t, newService, event.ServiceID, "must only receive the new room's events")
}
