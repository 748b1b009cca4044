package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Queue subscriptions are public and read-only; cross-origin browser
	// clients are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is the only inbound message type: a subscription request.
type clientMessage struct {
	Type      string `json:"type"`
	ServiceID string `json:"serviceId"`
}

const messageSubscribe = "SUBSCRIBE_TO_SERVICE"

// Client is one WebSocket connection. serviceID and closed are owned by the
// hub goroutine.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	serviceID uuid.UUID
	closed    bool

	logger *slog.Logger
}

// ServeWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub. An optional serviceID query parameter subscribes
// immediately; otherwise the client sends a SUBSCRIBE_TO_SERVICE message.
func ServeWS(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 64),
			logger: logger,
		}

		if raw := r.URL.Query().Get("serviceId"); raw != "" {
			if serviceID, err := uuid.Parse(raw); err == nil {
				hub.subscribe <- subscription{client: client, serviceID: serviceID}
			}
		}

		go client.writePump()
		go client.readPump()
	}
}

// readPump consumes subscription messages until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type != messageSubscribe {
			continue
		}
		serviceID, err := uuid.Parse(msg.ServiceID)
		if err != nil {
			continue
		}
		c.hub.subscribe <- subscription{client: c, serviceID: serviceID}
	}
}

// writePump pushes queued events and keepalive pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
