package embedding

import (
	"context"
	"errors"
	"fmt"
)

// EmbeddingProvider defines the interface for generating image and text embeddings.
// Implementations must return unit-length vectors of a fixed dimension so that
// cosine similarity reduces to a dot product downstream.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedImage(ctx context.Context, path string) ([]float32, error)
}

// ErrEmptyText is returned when the input text is empty after trimming.
// It is a validation failure and must never be retried.
var ErrEmptyText = errors.New("text must not be empty")

// EmbeddingError wraps a failure of the underlying model call. It is always
// propagated to the caller, which decides the retry policy.
type EmbeddingError struct {
	Op    string // "text" or "image"
	Input string
	Cause error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s failed for %q: %v", e.Op, e.Input, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}
