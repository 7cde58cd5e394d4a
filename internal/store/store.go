package store

import (
	"context"

	"github.com/google/uuid"

	"embedding-projector/internal/embeddings"
)

// Row is one embedded word at its output position.
type Row struct {
	Ord    int
	Word   string
	Vector embeddings.Vector
}

// Sink persists the rows of a run; an external DB implementation backs it.
type Sink interface {
	SaveRun(ctx context.Context, runID uuid.UUID, model string, rows []Row) error
	Close() error
}
