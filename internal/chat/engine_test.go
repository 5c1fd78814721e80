package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dwizi/quantumx/internal/chaterr"
	"github.com/dwizi/quantumx/internal/fallback"
	"github.com/dwizi/quantumx/internal/heartbeat"
	"github.com/dwizi/quantumx/internal/llm"
	"github.com/dwizi/quantumx/internal/session"
)

type fakeCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	seen    [][]llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, history []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, systemPrompt)
	f.seen = append(f.seen, append([]llm.Message(nil), history...))
	return f.reply, f.err
}

type fakeImages struct {
	image []byte
	err   error
}

func (f *fakeImages) GenerateImage(context.Context, string) ([]byte, error) {
	return f.image, f.err
}

type failingStore struct {
	session.Store
}

func (failingStore) Get(context.Context, string) (session.State, error) {
	return session.State{}, errors.New("disk on fire")
}

func newTestEngine(deps Dependencies) *Engine {
	deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(deps)
}

func TestAskWithoutCompleterUsesFallback(t *testing.T) {
	engine := newTestEngine(Dependencies{})

	result, err := engine.Ask(context.Background(), "s1", "calcule 2+2*3", ModeText)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if result.Text != "Resultado de `2+2*3`: **8**" {
		t.Fatalf("unexpected reply: %q", result.Text)
	}

	history, err := engine.History(context.Background(), "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Role != session.RoleUser || history[1].Role != session.RoleAssistant {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestAskSendsSystemPromptAndHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "Olá!"}
	engine := newTestEngine(Dependencies{Completer: completer})
	ctx := context.Background()

	if _, err := engine.Ask(ctx, "s1", "oi", ModeText); err != nil {
		t.Fatalf("first ask: %v", err)
	}
	result, err := engine.Ask(ctx, "s1", "tudo bem?", ModeText)
	if err != nil {
		t.Fatalf("second ask: %v", err)
	}
	if result.Text != "Olá!" {
		t.Fatalf("unexpected reply: %q", result.Text)
	}
	if completer.prompts[1] != SystemPrompt {
		t.Fatalf("unexpected system prompt: %q", completer.prompts[1])
	}
	last := completer.seen[1]
	if len(last) != 3 {
		t.Fatalf("expected 3 history messages, got %d", len(last))
	}
	if last[2].Role != "user" || last[2].Content != "tudo bem?" {
		t.Fatalf("expected question last, got %+v", last[2])
	}
}

func TestAskFallsBackOnCompletionFailure(t *testing.T) {
	registry := heartbeat.NewRegistry()
	completer := &fakeCompleter{err: errors.New("status 500")}
	engine := newTestEngine(Dependencies{Completer: completer, Reporter: registry})

	result, err := engine.Ask(context.Background(), "s1", "bom dia", ModeText)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if result.Text != fallback.CapabilitiesMessage {
		t.Fatalf("expected capabilities message, got %q", result.Text)
	}
	if got := registry.Snapshot().Overall; got != heartbeat.StateDegraded {
		t.Fatalf("expected degraded collaborator, got %s", got)
	}
}

func TestAskFallsBackWhenUnavailable(t *testing.T) {
	completer := &fakeCompleter{err: fmt.Errorf("%w: no key", llm.ErrUnavailable)}
	engine := newTestEngine(Dependencies{Completer: completer})

	result, err := engine.Ask(context.Background(), "s1", "crie uma lista: estudar IA, publicar no github", ModeText)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	want := "Perfeito! Aqui está sua lista de tarefas:\n- [ ] estudar IA\n- [ ] publicar no github"
	if result.Text != want {
		t.Fatalf("unexpected reply: %q", result.Text)
	}
}

func TestAskEmptyCompletion(t *testing.T) {
	engine := newTestEngine(Dependencies{Completer: &fakeCompleter{reply: "  "}})
	result, err := engine.Ask(context.Background(), "s1", "oi", ModeText)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if result.Text != EmptyCompletionMessage {
		t.Fatalf("unexpected reply: %q", result.Text)
	}
}

func TestAskImageModes(t *testing.T) {
	tests := []struct {
		name      string
		images    llm.ImageGenerator
		wantText  string
		wantImage bool
	}{
		{name: "not configured", images: nil, wantText: ImageNotConfiguredMessage},
		{name: "missing key", images: &fakeImages{err: llm.ErrUnavailable}, wantText: ImageNotConfiguredMessage},
		{name: "provider error", images: &fakeImages{err: errors.New("timeout")}, wantText: ImageFailedMessage},
		{name: "empty image", images: &fakeImages{}, wantText: ImageEmptyMessage},
		{name: "success", images: &fakeImages{image: []byte("png")}, wantText: ImageSuccessMessage, wantImage: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(Dependencies{Images: tc.images})
			result, err := engine.Ask(context.Background(), "s1", "um gato", ModeImage)
			if err != nil {
				t.Fatalf("ask: %v", err)
			}
			if result.Text != tc.wantText {
				t.Fatalf("unexpected text: %q", result.Text)
			}
			if (len(result.Image) > 0) != tc.wantImage {
				t.Fatalf("unexpected image presence: %d bytes", len(result.Image))
			}
		})
	}
}

func TestAskBoundsHistoryFIFO(t *testing.T) {
	engine := newTestEngine(Dependencies{})
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if _, err := engine.Ask(ctx, "s1", fmt.Sprintf("mensagem %d", i), ModeText); err != nil {
			t.Fatalf("ask %d: %v", i, err)
		}
		history, err := engine.History(ctx, "s1")
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(history) > session.DefaultMaxHistory {
			t.Fatalf("history grew to %d after ask %d", len(history), i)
		}
	}

	history, err := engine.History(ctx, "s1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != session.DefaultMaxHistory {
		t.Fatalf("expected %d messages, got %d", session.DefaultMaxHistory, len(history))
	}
	if history[0].Content != "mensagem 20" || history[len(history)-2].Content != "mensagem 29" {
		t.Fatalf("expected oldest messages evicted, got first=%q", history[0].Content)
	}
}

func TestAskConcurrentSameSessionKeepsEveryExchange(t *testing.T) {
	engine := newTestEngine(Dependencies{MaxHistory: 100})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := engine.Ask(ctx, "shared", fmt.Sprintf("oi %d", n), ModeText); err != nil {
				t.Errorf("ask: %v", err)
			}
		}(i)
	}
	wg.Wait()

	history, err := engine.History(ctx, "shared")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 40 {
		t.Fatalf("expected 40 messages, got %d", len(history))
	}
}

func TestAskRejectsEmptyInput(t *testing.T) {
	engine := newTestEngine(Dependencies{})
	ctx := context.Background()

	if _, err := engine.Ask(ctx, "s1", "   ", ModeText); !errors.Is(err, chaterr.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := engine.Ask(ctx, "", "oi", ModeText); !errors.Is(err, chaterr.ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
	count, err := engine.ActiveSessions(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected no sessions, got %d (%v)", count, err)
	}
}

func TestAskReturnsStoreFailure(t *testing.T) {
	engine := newTestEngine(Dependencies{Store: failingStore{Store: session.NewMemoryStore()}})
	_, err := engine.Ask(context.Background(), "s1", "oi", ModeText)
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{"image": ModeImage, " image ": ModeImage, "text": ModeText, "video": ModeText, "": ModeText} {
		if got := ParseMode(raw); got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", raw, got, want)
		}
	}
}
