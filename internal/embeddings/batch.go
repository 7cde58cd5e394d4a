package embeddings

import (
	"context"
	"fmt"
	"log/slog"

	"embedding-projector/internal/retry"
)

// BatchClient embeds one batch of words under a retry policy.
// Failures never escape: an exhausted batch yields an empty result.
type BatchClient struct {
	embedder Embedder
	policy   retry.Policy
	log      *slog.Logger
}

// NewBatchClient wraps embedder with policy.
func NewBatchClient(embedder Embedder, policy retry.Policy, log *slog.Logger) *BatchClient {
	return &BatchClient{embedder: embedder, policy: policy, log: log}
}

// Embed returns one vector per word in order, or an empty slice if every attempt failed.
func (c *BatchClient) Embed(ctx context.Context, words []string) []Vector {
	var vectors []Vector
	maxAttempts := c.policy.Attempts()
	err := c.policy.Do(ctx, func(int) error {
		out, err := c.embedder.EmbedBatch(ctx, words)
		if err != nil {
			return err
		}
		if len(out) != len(words) {
			return fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(words), len(out))
		}
		vectors = out
		return nil
	}, func(attempt int, err error) {
		c.log.Error("embedding API call failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"batch_size", len(words),
			"err", err,
		)
	})
	if err != nil {
		c.log.Warn("giving up on batch", "batch_size", len(words), "err", err)
		return []Vector{}
	}
	return vectors
}
