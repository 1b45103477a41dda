package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the floorplan notification protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypePong               = "pong"
	MsgTypeFloorplanActivated = "floorplan:activated"
)

// WSMessage is the envelope for all notification messages
type WSMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notifier pushes floorplan change notifications to connected viewers
type Notifier struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewNotifier creates a notifier. maxMessageKB bounds inbound messages;
// clients only ever send small control frames
func NewNotifier(maxMessageKB int) *Notifier {
	return &Notifier{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: maxMessageKB * 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS is enforced by the HTTP middleware in front of us
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the connection and keeps it registered until the
// client disconnects
func (n *Notifier) HandleWebSocket(c echo.Context) error {
	conn, err := n.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.clients[conn] = true
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		delete(n.clients, conn)
		n.mu.Unlock()
		conn.Close()
	}()

	// Read loop: answer pings, drop the connection on error
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}
		if msg.Type == MsgTypePing {
			n.send(conn, WSMessage{Type: MsgTypePong, Timestamp: time.Now()})
		}
	}
}

// Broadcast sends an event to every connected client. Connections that fail
// to accept the write are dropped
func (n *Notifier) Broadcast(msgType string, payload interface{}) {
	msg := WSMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for conn := range n.clients {
		if err := conn.WriteJSON(msg); err != nil {
			delete(n.clients, conn)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected viewers
func (n *Notifier) ClientCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

func (n *Notifier) send(conn *websocket.Conn, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		delete(n.clients, conn)
		conn.Close()
	}
}
