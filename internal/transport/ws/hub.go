package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message.
type MessageType string

// Server-to-client message types.
const (
	MsgQuestion       MessageType = "question"
	MsgCompleted      MessageType = "completed"
	MsgSessionExpired MessageType = "session_expired"
	MsgRejected       MessageType = "rejected"
	MsgInfo           MessageType = "info"
	MsgError          MessageType = "error"
)

// Client-to-server message types.
const (
	MsgCommand MessageType = "command"
	MsgAnswer  MessageType = "answer"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages one WebSocket connection per user. A reconnect replaces
// the previous connection.
type Hub struct {
	conns map[string]*Connection
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	outbound   chan *outboundMessage

	logger *zap.Logger
}

// Connection represents one user's WebSocket connection.
type Connection struct {
	UserID   string
	Username string
	Send     chan []byte
	Hub      *Hub
}

type outboundMessage struct {
	UserID  string
	Message *Message
}

// NewHub creates a hub and starts its dispatch loop.
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		outbound:   make(chan *outboundMessage, 256),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if old, ok := h.conns[conn.UserID]; ok {
				close(old.Send)
			}
			h.conns[conn.UserID] = conn
			h.mu.Unlock()
			h.logger.Info("user connected", zap.String("userId", conn.UserID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.UserID]; ok && existing == conn {
				delete(h.conns, conn.UserID)
				close(conn.Send)
				h.logger.Info("user disconnected", zap.String("userId", conn.UserID))
			}
			h.mu.Unlock()

		case msg := <-h.outbound:
			h.mu.RLock()
			if conn, ok := h.conns[msg.UserID]; ok {
				data, err := json.Marshal(msg.Message)
				if err == nil {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full.
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// SendToUser pushes a message to one user (implements
// service.Broadcaster). Unknown or disconnected users are silently
// skipped.
func (h *Hub) SendToUser(userID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal ws payload", zap.Error(err))
		return
	}
	h.outbound <- &outboundMessage{
		UserID:  userID,
		Message: &Message{Type: MessageType(msgType), Payload: data},
	}
}
