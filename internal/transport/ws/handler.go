package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mindprint/internal/model"
	"mindprint/internal/service"
	"mindprint/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// AnswerRequest is the payload of an inbound answer frame. The token
// binds the answer to the question instance it was rendered with.
type AnswerRequest struct {
	Token       string `json:"token"`
	OptionIndex int    `json:"optionIndex"`
}

// CommandRequest is the payload of an inbound command frame.
type CommandRequest struct {
	Text string `json:"text"`
}

// Handler handles WebSocket connections.
type Handler struct {
	hub          *Hub
	authSvc      *service.AuthService
	quizSvc      *service.QuizService
	analyticsSvc *service.AnalyticsService
	commands     commandTable
	logger       *zap.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(
	hub *Hub,
	authSvc *service.AuthService,
	quizSvc *service.QuizService,
	analyticsSvc *service.AnalyticsService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		hub:          hub,
		authSvc:      authSvc,
		quizSvc:      quizSvc,
		analyticsSvc: analyticsSvc,
		commands:     newCommandTable(),
		logger:       logger,
	}
}

// QuizWS handles GET /v1/ws/quiz.
func (h *Handler) QuizWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateParticipantToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		UserID:   claims.UserID,
		Username: claims.Username,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}
		h.handleInbound(conn, data)
	}
}

// handleInbound routes one client frame. The transport is
// at-least-once: a redelivered answer frame carries a stale token and
// comes back as session_expired, never as a double-counted answer.
func (h *Handler) handleInbound(conn *Connection, data []byte) {
	ctx := context.Background()

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{"message": "malformed message"})
		return
	}

	switch msg.Type {
	case MsgCommand:
		var req CommandRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{"message": "malformed command"})
			return
		}
		handled := h.commands.dispatch(ctx, h, conn, req.Text)
		h.analyticsSvc.RecordMessage(conn.UserID, conn.Username, req.Text, model.ChannelWebSocket, handled)
		if !handled {
			h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{
				"message": "Unknown command. Try 'help'.",
			})
		}

	case MsgAnswer:
		var req AnswerRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{"message": "malformed answer"})
			return
		}
		h.handleAnswer(ctx, conn, &req)

	default:
		h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{"message": "unknown message type"})
	}
}

func (h *Handler) handleAnswer(ctx context.Context, conn *Connection, req *AnswerRequest) {
	// On a socket the connection identity is the requester.
	next, completed, err := h.quizSvc.SubmitAnswer(ctx, conn.UserID, conn.UserID, req.Token, req.OptionIndex)
	if err != nil {
		h.sendQuizError(conn, err)
		return
	}
	if completed != nil {
		h.hub.SendToUser(conn.UserID, string(MsgCompleted), completed)
		return
	}
	h.hub.SendToUser(conn.UserID, string(MsgQuestion), next)
}

// sendQuizError translates engine errors into user-facing frames.
func (h *Handler) sendQuizError(conn *Connection, err error) {
	switch {
	case errors.Is(err, session.ErrDuplicateSession):
		h.hub.SendToUser(conn.UserID, string(MsgRejected), map[string]string{
			"message": "You already have an active quiz. Finish it or send 'cancel test'.",
		})
	case errors.Is(err, session.ErrNoSession):
		h.hub.SendToUser(conn.UserID, string(MsgRejected), map[string]string{
			"message": "No quiz in progress. Send 'start test' to begin.",
		})
	case errors.Is(err, session.ErrSessionExpired):
		h.hub.SendToUser(conn.UserID, string(MsgSessionExpired), map[string]string{
			"message": "That quiz is no longer active. Please restart.",
		})
	case errors.Is(err, session.ErrInvalidOption):
		h.hub.SendToUser(conn.UserID, string(MsgRejected), map[string]string{
			"message": "That option does not exist for this question.",
		})
	case errors.Is(err, service.ErrUnauthorized):
		h.hub.SendToUser(conn.UserID, string(MsgRejected), map[string]string{
			"message": "This is not your quiz.",
		})
	default:
		h.logger.Error("quiz interaction failed",
			zap.String("userId", conn.UserID),
			zap.Error(err))
		h.hub.SendToUser(conn.UserID, string(MsgError), map[string]string{
			"message": "Something went wrong. Please try again.",
		})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
