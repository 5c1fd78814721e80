package session

import (
	"context"
	"sync"
)

func (s State) Clone() State {
	if s.Messages == nil {
		return State{}
	}
	copied := make([]Message, len(s.Messages))
	copy(copied, s.Messages)
	return State{Messages: copied}
}

func (s *State) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// Truncate keeps the newest max messages.
func (s *State) Truncate(max int) {
	if max <= 0 || len(s.Messages) <= max {
		return
	}
	kept := make([]Message, max)
	copy(kept, s.Messages[len(s.Messages)-max:])
	s.Messages = kept
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]State)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.sessions[id] = State{}
	}
	return nil
}

func (s *MemoryStore) Put(_ context.Context, id string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = state.Clone()
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the session's mutex is held and returns its unlock func.
func (l *Locks) Lock(id string) func() {
	l.mu.Lock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
