package mocks

import (
	"context"
	"io"
	"time"

	"regapi/internal/model"
	"regapi/internal/service"
	"regapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Create(ctx context.Context, reg model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, reg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationService) Get(ctx context.Context, id int) (*model.Registration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationService) List(ctx context.Context, limit, offset int, f service.ListFilter) (*service.RegistrationListResult, error) {
	args := m.Called(ctx, limit, offset, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegistrationListResult), args.Error(1)
}

func (m *MockRegistrationService) Today(ctx context.Context) ([]model.Registration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}

func (m *MockRegistrationService) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegistrationService) ExportDay(ctx context.Context, day time.Time) (*service.ExportResult, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockRegistrationService) OpenExport(ctx context.Context, day time.Time) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
