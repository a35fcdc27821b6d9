package mocks

import (
	"context"

	"regapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRegistrationCache struct {
	mock.Mock
}

func (m *MockRegistrationCache) Get(ctx context.Context, id int) (*model.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationCache) Set(ctx context.Context, reg *model.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRegistrationCache) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
