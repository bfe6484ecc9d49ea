package llm

import (
	"context"
	"errors"
)

// Completer abstracts LLM providers for text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder abstracts embedding providers. Inputs are embedded as one
// batched call; the result preserves input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrNotConfigured is returned by the placeholder clients.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderCompleter is a stub implementation until provider wiring is added.
type PlaceholderCompleter struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", ErrNotConfigured
}

// PlaceholderEmbedder is a stub implementation until provider wiring is added.
type PlaceholderEmbedder struct{}

// EmbedTexts returns ErrNotConfigured.
func (PlaceholderEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	_ = ctx
	_ = texts
	return nil, ErrNotConfigured
}
