package ws

import (
	"context"
	"strings"

	"mindprint/internal/model"
)

// commandFunc handles one trigger phrase received over the socket.
type commandFunc func(ctx context.Context, h *Handler, conn *Connection)

// commandTable maps trigger phrases to handlers. Built once at
// startup; dispatch is a plain map lookup on the normalized text.
type commandTable map[string]commandFunc

func newCommandTable() commandTable {
	return commandTable{
		"start test":       startQuiz(model.VariantFull),
		"start quick test": startQuiz(model.VariantShort),
		"cancel test":      cancelQuiz,
		"help":             showHelp,
	}
}

// dispatch runs the handler registered for the phrase. Returns false
// when no command matches.
func (t commandTable) dispatch(ctx context.Context, h *Handler, conn *Connection, text string) bool {
	fn, ok := t[normalize(text)]
	if !ok {
		return false
	}
	fn(ctx, h, conn)
	return true
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func startQuiz(variant model.Variant) commandFunc {
	return func(ctx context.Context, h *Handler, conn *Connection) {
		payload, err := h.quizSvc.Start(ctx, conn.UserID, conn.Username, variant)
		if err != nil {
			h.sendQuizError(conn, err)
			return
		}
		h.hub.SendToUser(conn.UserID, string(MsgQuestion), payload)
	}
}

func cancelQuiz(ctx context.Context, h *Handler, conn *Connection) {
	h.quizSvc.Abandon(ctx, conn.UserID)
	h.hub.SendToUser(conn.UserID, string(MsgInfo), map[string]string{
		"message": "Your quiz has been cancelled.",
	})
}

func showHelp(ctx context.Context, h *Handler, conn *Connection) {
	h.hub.SendToUser(conn.UserID, string(MsgInfo), map[string]string{
		"message": "Commands: 'start test' (full quiz), 'start quick test' (5 questions), 'cancel test'.",
	})
}
