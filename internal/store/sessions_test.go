package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dwizi/quantumx/internal/session"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quantumx_test.sqlite")
	sqlStore, err := New(dbPath)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}
	return sqlStore
}

func TestSessionRoundTripKeepsOrder(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	if _, err := sqlStore.Get(ctx, "sess-1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before create, got %v", err)
	}
	if err := sqlStore.Create(ctx, "sess-1"); err != nil {
		t.Fatalf("create session: %v", err)
	}

	state, err := sqlStore.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get empty session: %v", err)
	}
	if len(state.Messages) != 0 {
		t.Fatalf("expected empty history, got %+v", state)
	}

	for i := 0; i < 3; i++ {
		state.Append(session.RoleUser, fmt.Sprintf("pergunta %d", i))
		state.Append(session.RoleAssistant, fmt.Sprintf("resposta %d", i))
	}
	if err := sqlStore.Put(ctx, "sess-1", state); err != nil {
		t.Fatalf("put session: %v", err)
	}

	loaded, err := sqlStore.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if len(loaded.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(loaded.Messages))
	}
	if loaded.Messages[0].Content != "pergunta 0" || loaded.Messages[5].Content != "resposta 2" {
		t.Fatalf("unexpected message order: %+v", loaded.Messages)
	}
	if loaded.Messages[1].Role != session.RoleAssistant {
		t.Fatalf("expected assistant role, got %s", loaded.Messages[1].Role)
	}
}

func TestSessionPutReplacesHistory(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	long := session.State{}
	for i := 0; i < 5; i++ {
		long.Append(session.RoleUser, fmt.Sprintf("m%d", i))
	}
	if err := sqlStore.Put(ctx, "sess-2", long); err != nil {
		t.Fatalf("put long: %v", err)
	}
	long.Truncate(2)
	if err := sqlStore.Put(ctx, "sess-2", long); err != nil {
		t.Fatalf("put truncated: %v", err)
	}

	loaded, err := sqlStore.Get(ctx, "sess-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Messages) != 2 || loaded.Messages[0].Content != "m3" {
		t.Fatalf("unexpected history after truncate: %+v", loaded.Messages)
	}
}

func TestSessionLenCountsCreatedSessions(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "a"} {
		if err := sqlStore.Create(ctx, id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	count, err := sqlStore.Len(ctx)
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 sessions, got %d", count)
	}
}
