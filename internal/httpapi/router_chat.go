package httpapi

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/dwizi/quantumx/internal/chat"
	"github.com/dwizi/quantumx/internal/chaterr"
)

const maxFormBytes = 1 << 20

type chatResponse struct {
	Response    string  `json:"response"`
	ImageBase64 *string `json:"image_base64"`
	Mode        string  `json:"mode"`
}

func newChatResponse(result chat.Result, mode chat.Mode) chatResponse {
	payload := chatResponse{Response: result.Text, Mode: string(mode)}
	if len(result.Image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(result.Image)
		payload.ImageBase64 = &encoded
	}
	return payload
}

func (r *router) handleChat(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	req.Body = http.MaxBytesReader(w, req.Body, maxFormBytes)
	var err error
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data") {
		err = req.ParseMultipartForm(maxFormBytes)
	} else {
		err = req.ParseForm()
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	message := strings.TrimSpace(req.FormValue("message"))
	mode := chat.ParseMode(req.FormValue("mode"))
	if message == "" {
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: chat.EmptyMessage, Mode: string(mode)})
		return
	}

	id, created := sessionID(req)
	result, err := r.deps.Engine.Ask(req.Context(), id, message, mode)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chaterr.ErrEmptyMessage) {
			status = http.StatusBadRequest
		}
		r.deps.Logger.Error("chat request failed", "error", err, "session_id", id, "mode", mode)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	if created {
		http.SetCookie(w, sessionCookie(id))
	}
	writeJSON(w, http.StatusOK, newChatResponse(result, mode))
}
