package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"embedding-projector/internal/retry"
)

// EventType enumerates published event categories.
type EventType string

const (
	EventRunCompleted EventType = "run.completed"
)

// Event is a message announcing something about a run.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// PublishWithRetry attempts to publish with retries and exponential backoff.
func PublishWithRetry(ctx context.Context, p Publisher, event Event, attempts int, base time.Duration) error {
	policy := retry.Policy{MaxAttempts: attempts, BaseDelay: base}
	return policy.Do(ctx, func(int) error {
		return p.Publish(ctx, event)
	}, nil)
}
