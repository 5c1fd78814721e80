package session

import (
	"context"
	"errors"
	"sync"
)

// DefaultMaxHistory bounds how many messages a conversation keeps.
const DefaultMaxHistory = 20

var ErrNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// State is the conversation history of one session, oldest message first.
type State struct {
	Messages []Message `json:"messages"`
}

// Store maps session ids to conversation state.
type Store interface {
	// Get returns ErrNotFound when id has never been created.
	Get(ctx context.Context, id string) (State, error)
	// Create registers an empty conversation for id unless one exists.
	Create(ctx context.Context, id string) error
	Put(ctx context.Context, id string, state State) error
	Len(ctx context.Context) (int, error)
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]State
}

// Locks hands out one mutex per session id.
type Locks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}
