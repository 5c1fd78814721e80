package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwizi/quantumx/internal/chat"
)

const (
	wsReadLimit    = 64 << 10
	wsIdleTimeout  = 10 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type wsError struct {
	Error string `json:"error"`
}

// handleWebSocket serves the same conversation as /chat over one
// connection: every client frame is answered by exactly one server frame.
func (r *router) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	id, created := sessionID(req)
	header := http.Header{}
	if created {
		header.Add("Set-Cookie", sessionCookie(id).String())
	}
	conn, err := upgrader.Upgrade(w, req, header)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	logger := r.deps.Logger.With("session_id", id)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		var frame wsRequest
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, websocket.ErrCloseSent) {
				logger.Debug("websocket closed", "error", err)
			}
			return
		}

		message := strings.TrimSpace(frame.Message)
		mode := chat.ParseMode(frame.Mode)
		var reply any
		if message == "" {
			reply = wsError{Error: chat.EmptyMessage}
		} else {
			result, err := r.deps.Engine.Ask(req.Context(), id, message, mode)
			if err != nil {
				logger.Error("websocket chat failed", "error", err)
				reply = wsError{Error: err.Error()}
			} else {
				reply = newChatResponse(result, mode)
			}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
