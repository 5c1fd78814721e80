package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dwizi/quantumx/internal/chat"
	"github.com/dwizi/quantumx/internal/config"
	"github.com/dwizi/quantumx/internal/heartbeat"
	"github.com/dwizi/quantumx/internal/session"
)

const (
	SessionCookie = "qx_session"
	serviceName   = "QuantumX"
)

type ChatEngine interface {
	Ask(ctx context.Context, sessionID, message string, mode chat.Mode) (chat.Result, error)
	EnsureSession(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]session.Message, error)
	ActiveSessions(ctx context.Context) (int, error)
}

type StatusProvider interface {
	Snapshot() heartbeat.Snapshot
}

type Dependencies struct {
	Config    config.Config
	Engine    ChatEngine
	Templates *Templates
	Status    StatusProvider
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Templates == nil {
		deps.Templates = MustEmbeddedTemplates()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.handleIndex)
	mux.HandleFunc("/chat", rt.handleChat)
	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/api/v1/heartbeat", rt.handleHeartbeat)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))
	if deps.Config.WebSocket {
		mux.HandleFunc("/ws", rt.handleWebSocket)
	}
	if deps.MCP != nil {
		mux.Handle("/mcp", deps.MCP)
	}
	return mux
}

// sessionID returns the caller's session id, minting one when the request
// carries no cookie.
func sessionID(req *http.Request) (string, bool) {
	if cookie, err := req.Cookie(SessionCookie); err == nil {
		if id := strings.TrimSpace(cookie.Value); id != "" {
			return id, false
		}
	}
	return uuid.NewString(), true
}

func sessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
