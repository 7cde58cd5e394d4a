package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every subject this publisher writes to.
const SubjectPrefix = "projector."

// NewNATS constructs a thin NATS-based publisher.
func NewNATS(log *slog.Logger, nc *nats.Conn) Publisher {
	return &natsPublisher{log: log, nc: nc}
}

type natsPublisher struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (p *natsPublisher) Publish(_ context.Context, event Event) error {
	if event.Type == "" {
		return errors.New("event type required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	subject := Subject(event.Type)
	if err := p.nc.Publish(subject, body); err != nil {
		return err
	}
	p.log.Debug("event published", "subject", subject, "id", event.ID)
	return nil
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}

// Subject returns the NATS subject for an event type.
func Subject(t EventType) string {
	return SubjectPrefix + string(t)
}
