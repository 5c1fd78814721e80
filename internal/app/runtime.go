package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dwizi/quantumx/internal/chat"
	"github.com/dwizi/quantumx/internal/config"
	"github.com/dwizi/quantumx/internal/heartbeat"
	"github.com/dwizi/quantumx/internal/httpapi"
	"github.com/dwizi/quantumx/internal/llm"
	"github.com/dwizi/quantumx/internal/llm/anthropic"
	"github.com/dwizi/quantumx/internal/llm/openai"
	"github.com/dwizi/quantumx/internal/mcp"
	"github.com/dwizi/quantumx/internal/session"
	"github.com/dwizi/quantumx/internal/store"
	"github.com/dwizi/quantumx/internal/watcher"
)

var templateExtensions = []string{".html", ".tmpl"}

// New builds the chat runtime. Which collaborators are enabled is decided
// here, once, from cfg.
func New(cfg config.Config, logger *slog.Logger, version string) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := heartbeat.NewRegistry()
	r := &Runtime{
		cfg:       cfg,
		logger:    logger,
		heartbeat: registry,
	}

	sessions, err := r.openSessionStore(cfg)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	completer, images := buildCollaborators(cfg, timeout, logger, registry)
	r.engine = chat.New(chat.Dependencies{
		Store:      sessions,
		Locks:      session.NewLocks(),
		Completer:  completer,
		Images:     images,
		Reporter:   registry,
		Logger:     logger,
		MaxHistory: cfg.MaxHistory,
		Timeout:    timeout,
	})

	templates, err := httpapi.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.templates = templates
	if dir := strings.TrimSpace(cfg.TemplateDir); dir != "" {
		r.watcher, err = watcher.New(dir, templateExtensions, logger, r.reloadTemplates)
		if err != nil {
			_ = r.Close()
			return nil, err
		}
	} else {
		registry.Disabled(heartbeat.ComponentWatcher, "embedded templates")
	}

	deps := httpapi.Dependencies{
		Config:    cfg,
		Engine:    r.engine,
		Templates: templates,
		Status:    registry,
		Logger:    logger.With("component", "http"),
	}
	if cfg.MCPHTTP {
		deps.MCP = mcp.Handler(mcp.NewServer(version, logger))
	}
	r.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return r, nil
}

func (r *Runtime) Handler() http.Handler {
	return r.httpServer.Handler
}

func (r *Runtime) Status() heartbeat.Snapshot {
	return r.heartbeat.Snapshot()
}

func (r *Runtime) openSessionStore(cfg config.Config) (session.Store, error) {
	if cfg.SessionBackend != "sqlite" {
		r.heartbeat.Beat(heartbeat.ComponentStore, "memory")
		return session.NewMemoryStore(), nil
	}
	sqlStore, err := store.New(cfg.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	r.closers = append(r.closers, sqlStore)
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate session store: %w", err)
	}
	r.heartbeat.Beat(heartbeat.ComponentStore, "sqlite")
	return sqlStore, nil
}

func buildCollaborators(cfg config.Config, timeout time.Duration, logger *slog.Logger, reporter heartbeat.Reporter) (llm.Completer, llm.ImageGenerator) {
	openaiClient := openai.New(openai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.OpenAIModel,
		ImageModel: cfg.OpenAIImageModel,
		Timeout:    timeout,
	}, logger.With("component", "openai"))

	var completer llm.Completer
	switch cfg.LLMProvider {
	case "anthropic":
		client := anthropic.New(anthropic.Config{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   cfg.AnthropicModel,
			Timeout: timeout,
		}, logger.With("component", "anthropic"))
		if client.Configured() {
			completer = client
		}
	default:
		if openaiClient.Configured() {
			completer = openaiClient
		}
	}
	if completer != nil {
		reporter.Starting(heartbeat.ComponentCompletion, cfg.LLMProvider)
	} else {
		reporter.Disabled(heartbeat.ComponentCompletion, "no api key, using offline fallback")
	}

	var images llm.ImageGenerator
	if openaiClient.Configured() {
		images = openaiClient
		reporter.Starting(heartbeat.ComponentImage, "openai")
	} else {
		reporter.Disabled(heartbeat.ComponentImage, "no api key")
	}
	return completer, images
}

func (r *Runtime) reloadTemplates(_ context.Context, path string) {
	if err := r.templates.Reload(); err != nil {
		r.heartbeat.Degrade(heartbeat.ComponentWatcher, "template reload failed", err)
		r.logger.Error("template reload failed", "path", filepath.Base(path), "error", err)
		return
	}
	r.heartbeat.Beat(heartbeat.ComponentWatcher, "templates reloaded")
}

func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}

var _ io.Closer = (*Runtime)(nil)
