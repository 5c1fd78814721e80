package httpapi

import (
	"bytes"
	"net/http"

	"github.com/dwizi/quantumx/internal/session"
)

func (r *router) handleIndex(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" && req.URL.Path != "/index.html" {
		http.NotFound(w, req)
		return
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id, created := sessionID(req)
	if err := r.deps.Engine.EnsureSession(req.Context(), id); err != nil {
		r.deps.Logger.Error("failed to create session", "error", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	history, err := r.deps.Engine.History(req.Context(), id)
	if err != nil {
		r.deps.Logger.Error("failed to load history", "error", err, "session_id", id)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	if err := r.deps.Templates.renderIndex(&page, indexData{Name: serviceName, Messages: toViews(history)}); err != nil {
		r.deps.Logger.Error("failed to render chat page", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	if created {
		http.SetCookie(w, sessionCookie(id))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Bytes())
}

func toViews(history []session.Message) []messageView {
	views := make([]messageView, 0, len(history))
	for _, message := range history {
		views = append(views, messageView{Role: string(message.Role), Content: message.Content})
	}
	return views
}
