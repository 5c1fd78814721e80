package httpapi

import "net/http"

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	active, err := r.deps.Engine.ActiveSessions(req.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"name":   serviceName,
			"error":  err.Error(),
		})
		return
	}
	payload := map[string]any{
		"status":          "ok",
		"name":            serviceName,
		"active_sessions": active,
	}
	if r.deps.Status != nil {
		payload["collaborators"] = r.deps.Status.Snapshot().Overall
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *router) handleHeartbeat(w http.ResponseWriter, req *http.Request) {
	if r.deps.Status == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "heartbeat is disabled",
		})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Status.Snapshot())
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":          serviceName,
		"environment":   r.deps.Config.Environment,
		"llm_provider":  r.deps.Config.LLMProvider,
		"session_store": r.deps.Config.SessionBackend,
		"max_history":   r.deps.Config.MaxHistory,
		"websocket":     r.deps.Config.WebSocket,
		"template_dir":  r.deps.Templates.Dir(),
	})
}
