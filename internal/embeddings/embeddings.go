package embeddings

import (
	"context"
	"errors"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

var (
	// ErrAPIKeyRequired is returned when a remote embedder is built without credentials.
	ErrAPIKeyRequired = errors.New("api key required")
	// ErrCountMismatch is returned when the API returns a different number of vectors than inputs.
	ErrCountMismatch = errors.New("embedding count mismatch")
)

// Embedder turns a batch of texts into vectors, one per input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
}
