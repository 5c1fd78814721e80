package llm

import (
	"context"
	"errors"
)

// ErrUnavailable means the collaborator is not configured, as opposed to a
// call that was attempted and failed.
var ErrUnavailable = errors.New("llm unavailable")

type Message struct {
	Role    string
	Content string
}

// Completer produces the assistant reply for a conversation. history ends
// with the user message being answered.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []Message) (string, error)
}

// ImageGenerator returns the raw bytes of an image rendered from prompt. An
// empty slice with a nil error means the provider answered without data.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
