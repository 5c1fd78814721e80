package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/quantumx/internal/chaterr"
	"github.com/dwizi/quantumx/internal/fallback"
	"github.com/dwizi/quantumx/internal/heartbeat"
	"github.com/dwizi/quantumx/internal/llm"
	"github.com/dwizi/quantumx/internal/session"
)

type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// ParseMode maps anything other than "image" to text.
func ParseMode(raw string) Mode {
	if strings.TrimSpace(raw) == string(ModeImage) {
		return ModeImage
	}
	return ModeText
}

type Result struct {
	Text  string
	Image []byte
}

type Dependencies struct {
	Store      session.Store
	Locks      *session.Locks
	Completer  llm.Completer
	Images     llm.ImageGenerator
	Reporter   heartbeat.Reporter
	Logger     *slog.Logger
	MaxHistory int
	Timeout    time.Duration
}

type Engine struct {
	store      session.Store
	locks      *session.Locks
	completer  llm.Completer
	images     llm.ImageGenerator
	reporter   heartbeat.Reporter
	logger     *slog.Logger
	maxHistory int
	timeout    time.Duration
}

func New(deps Dependencies) *Engine {
	if deps.Store == nil {
		deps.Store = session.NewMemoryStore()
	}
	if deps.Locks == nil {
		deps.Locks = session.NewLocks()
	}
	if deps.Reporter == nil {
		deps.Reporter = heartbeat.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxHistory <= 0 {
		deps.MaxHistory = session.DefaultMaxHistory
	}
	if deps.Timeout <= 0 {
		deps.Timeout = 60 * time.Second
	}
	return &Engine{
		store:      deps.Store,
		locks:      deps.Locks,
		completer:  deps.Completer,
		images:     deps.Images,
		reporter:   deps.Reporter,
		logger:     deps.Logger.With("component", "chat"),
		maxHistory: deps.MaxHistory,
		timeout:    deps.Timeout,
	}
}

// Ask records message in the session, answers it and records the answer.
// Collaborator failures degrade to text; only store failures are returned.
func (e *Engine) Ask(ctx context.Context, sessionID, message string, mode Mode) (Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Result{}, chaterr.ErrSessionRequired
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Result{}, chaterr.ErrEmptyMessage
	}

	history, err := e.record(ctx, sessionID, session.RoleUser, message)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if mode == ModeImage {
		result = e.generateImage(ctx, sessionID, message)
	} else {
		result = Result{Text: e.completeText(ctx, sessionID, history, message)}
	}

	if _, err := e.record(ctx, sessionID, session.RoleAssistant, result.Text); err != nil {
		return Result{}, err
	}
	return result, nil
}

// EnsureSession registers sessionID so it counts as active before its
// first message.
func (e *Engine) EnsureSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return chaterr.ErrSessionRequired
	}
	if err := e.store.Create(ctx, sessionID); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (e *Engine) History(ctx context.Context, sessionID string) ([]session.Message, error) {
	state, err := e.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return state.Messages, nil
}

func (e *Engine) ActiveSessions(ctx context.Context) (int, error) {
	return e.store.Len(ctx)
}

// record appends one message under the session lock and returns a copy of
// the resulting history.
func (e *Engine) record(ctx context.Context, sessionID string, role session.Role, content string) (session.State, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	state, err := e.store.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		e.reporter.Degrade(heartbeat.ComponentStore, "load session", err)
		return session.State{}, fmt.Errorf("load session: %w", err)
	}
	state.Append(role, content)
	state.Truncate(e.maxHistory)
	if err := e.store.Put(ctx, sessionID, state); err != nil {
		e.reporter.Degrade(heartbeat.ComponentStore, "save session", err)
		return session.State{}, fmt.Errorf("save session: %w", err)
	}
	return state.Clone(), nil
}

func (e *Engine) completeText(ctx context.Context, sessionID string, history session.State, message string) string {
	if e.completer == nil {
		return fallback.Dispatch(message)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	reply, err := e.completer.Complete(callCtx, SystemPrompt, toLLMHistory(history))
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			e.reporter.Disabled(heartbeat.ComponentCompletion, err.Error())
		} else {
			e.reporter.Degrade(heartbeat.ComponentCompletion, "completion failed", err)
			e.logger.Warn("completion failed, using fallback", "session_id", sessionID, "error", err)
		}
		return fallback.Dispatch(message)
	}
	e.reporter.Beat(heartbeat.ComponentCompletion, "completion ok")
	if strings.TrimSpace(reply) == "" {
		return EmptyCompletionMessage
	}
	return reply
}

func (e *Engine) generateImage(ctx context.Context, sessionID, prompt string) Result {
	if e.images == nil {
		return Result{Text: ImageNotConfiguredMessage}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	image, err := e.images.GenerateImage(callCtx, prompt)
	switch {
	case errors.Is(err, llm.ErrUnavailable):
		e.reporter.Disabled(heartbeat.ComponentImage, err.Error())
		return Result{Text: ImageNotConfiguredMessage}
	case err != nil:
		e.reporter.Degrade(heartbeat.ComponentImage, "image generation failed", err)
		e.logger.Warn("image generation failed", "session_id", sessionID, "error", err)
		return Result{Text: ImageFailedMessage}
	}
	e.reporter.Beat(heartbeat.ComponentImage, "image ok")
	if len(image) == 0 {
		return Result{Text: ImageEmptyMessage}
	}
	return Result{Text: ImageSuccessMessage, Image: image}
}

func toLLMHistory(state session.State) []llm.Message {
	messages := make([]llm.Message, 0, len(state.Messages))
	for _, message := range state.Messages {
		messages = append(messages, llm.Message{Role: string(message.Role), Content: message.Content})
	}
	return messages
}
