package mocks

import (
	"context"

	"regapi/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRegistrationCreated(ctx context.Context, event queue.RegistrationCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
