package queue

import (
	"context"
	"time"

	"regapi/internal/model"
)

// RegistrationCreatedEvent is published after a registration has been stored.
type RegistrationCreatedEvent struct {
	RegistrationID int                `json:"registration_id"`
	Registration   model.Registration `json:"registration"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// Publisher delivers registration events to a broker.
type Publisher interface {
	PublishRegistrationCreated(ctx context.Context, event RegistrationCreatedEvent) error
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishRegistrationCreated(context.Context, RegistrationCreatedEvent) error { return nil }
