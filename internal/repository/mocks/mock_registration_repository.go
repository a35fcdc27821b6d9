package mocks

import (
	"context"
	"time"

	"regapi/internal/model"
	"regapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id int) (*model.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) List(ctx context.Context, pq repository.PageQuery, f repository.Filter) (*repository.PageResult[model.Registration], error) {
	args := m.Called(ctx, pq, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Registration]), args.Error(1)
}

func (m *MockRegistrationRepository) ListBetween(ctx context.Context, from, to time.Time) ([]model.Registration, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
