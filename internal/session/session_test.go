package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestStateTruncateKeepsNewest(t *testing.T) {
	var state State
	for i := 0; i < 25; i++ {
		state.Append(RoleUser, fmt.Sprintf("m%d", i))
	}

	state.Truncate(DefaultMaxHistory)

	if len(state.Messages) != DefaultMaxHistory {
		t.Fatalf("expected %d messages, got %d", DefaultMaxHistory, len(state.Messages))
	}
	if state.Messages[0].Content != "m5" || state.Messages[19].Content != "m24" {
		t.Fatalf("unexpected window: first=%s last=%s", state.Messages[0].Content, state.Messages[19].Content)
	}
}

func TestStateCloneIsCopy(t *testing.T) {
	state := State{}
	state.Append(RoleUser, "hello")

	copied := state.Clone()
	copied.Messages[0].Content = "modified"

	if state.Messages[0].Content != "hello" {
		t.Error("Clone should not share the message slice")
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Create(ctx, "s1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	state, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	state.Append(RoleUser, "oi")
	if err := store.Put(ctx, "s1", state); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Create on an existing id must not reset it.
	if err := store.Create(ctx, "s1"); err != nil {
		t.Fatalf("create again: %v", err)
	}
	state, err = store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(state.Messages) != 1 || state.Messages[0].Content != "oi" {
		t.Fatalf("unexpected state: %+v", state)
	}

	count, err := store.Len(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 session, got %d (%v)", count, err)
	}
}

func TestLocksSerializeSameSession(t *testing.T) {
	locks := NewLocks()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("shared")
			defer unlock()
			current := counter
			counter = current + 1
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 increments, got %d", counter)
	}
}

func TestLocksIndependentSessions(t *testing.T) {
	locks := NewLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	<-done
}
