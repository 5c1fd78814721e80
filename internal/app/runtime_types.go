package app

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dwizi/quantumx/internal/chat"
	"github.com/dwizi/quantumx/internal/config"
	"github.com/dwizi/quantumx/internal/heartbeat"
	"github.com/dwizi/quantumx/internal/httpapi"
	"github.com/dwizi/quantumx/internal/watcher"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	closers    []io.Closer
	engine     *chat.Engine
	templates  *httpapi.Templates
	httpServer *http.Server
	watcher    *watcher.Service
	heartbeat  *heartbeat.Registry
}
