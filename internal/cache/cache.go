package cache

import (
	"context"
	"errors"

	"regapi/internal/model"
)

// ErrMiss is returned by Get when no usable entry exists for the id.
var ErrMiss = errors.New("cache miss")

// RegistrationCache is a read-through cache in front of the registration repository.
// Implementations must be safe for concurrent use.
type RegistrationCache interface {
	Get(ctx context.Context, id int) (*model.Registration, error)
	Set(ctx context.Context, reg *model.Registration) error
	Delete(ctx context.Context, id int) error
}

// Noop is used when no cache backend is configured. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, int) (*model.Registration, error) { return nil, ErrMiss }
func (Noop) Set(context.Context, *model.Registration) error        { return nil }
func (Noop) Delete(context.Context, int) error                     { return nil }
