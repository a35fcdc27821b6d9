package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"regapi/internal/cache"
	cacheMocks "regapi/internal/cache/mocks"
	"regapi/internal/model"
	"regapi/internal/queue"
	queueMocks "regapi/internal/queue/mocks"
	"regapi/internal/repository"
	repoMocks "regapi/internal/repository/mocks"
	"regapi/internal/storage"
	storeMocks "regapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

func janeDoe(id int) *model.Registration {
	return &model.Registration{
		Id:           id,
		Type:         model.TypeCheckIn,
		Date:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CustomerId:   "C1",
		CustomerName: "Jane Doe",
		Passport:     "P123",
		Address:      "1 Main St",
		Amount:       100,
		Total:        120,
		Culture:      "en-US",
		PhoneNumber:  "555-0100",
	}
}

type fixture struct {
	repo  *repoMocks.MockRegistrationRepository
	cache *cacheMocks.MockRegistrationCache
	pub   *queueMocks.MockPublisher
	store *storeMocks.MockStorage
	svc   RegistrationService
}

func newFixture(loc *time.Location) *fixture {
	f := &fixture{
		repo:  new(repoMocks.MockRegistrationRepository),
		cache: new(cacheMocks.MockRegistrationCache),
		pub:   new(queueMocks.MockPublisher),
		store: new(storeMocks.MockStorage),
	}
	f.svc = NewRegistrationService(f.repo, Dependencies{
		Cache:         f.cache,
		Publisher:     f.pub,
		Store:         f.store,
		Location:      loc,
		PresignExpiry: time.Minute,
		Now:           func() time.Time { return fixedNow },
	})
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.pub.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func TestRegistrationService_Create(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(f *fixture)
		wantErrMsg string
	}{
		{
			name: "happy path",
			setupMocks: func(f *fixture) {
				f.repo.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Registration) bool {
					return r.Id == 0 && r.CustomerName == "Jane Doe"
				})).Return(janeDoe(1), nil)
				f.cache.On("Set", mock.Anything, janeDoe(1)).Return(nil)
				f.pub.On("PublishRegistrationCreated", mock.Anything, queue.RegistrationCreatedEvent{
					RegistrationID: 1,
					Registration:   *janeDoe(1),
					OccurredAt:     fixedNow,
				}).Return(nil)
			},
		},
		{
			name: "cache and broker failures do not fail the request",
			setupMocks: func(f *fixture) {
				f.repo.On("Create", mock.Anything, mock.Anything).Return(janeDoe(1), nil)
				f.cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
				f.pub.On("PublishRegistrationCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))
			},
		},
		{
			name: "repository error",
			setupMocks: func(f *fixture) {
				f.repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(time.UTC)
			tt.setupMocks(f)

			in := *janeDoe(99)
			got, err := f.svc.Create(context.Background(), in)

			if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, got.Id)
			}
			f.assertExpectations(t)
		})
	}
}

func TestRegistrationService_Get(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		setupMocks func(f *fixture)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name: "cache hit",
			id:   1,
			setupMocks: func(f *fixture) {
				f.cache.On("Get", mock.Anything, 1).Return(janeDoe(1), nil)
			},
		},
		{
			name: "cache miss fills cache",
			id:   1,
			setupMocks: func(f *fixture) {
				f.cache.On("Get", mock.Anything, 1).Return(nil, cache.ErrMiss)
				f.repo.On("FindByID", mock.Anything, 1).Return(janeDoe(1), nil)
				f.cache.On("Set", mock.Anything, janeDoe(1)).Return(nil)
			},
		},
		{
			name: "cache error falls back to repository",
			id:   1,
			setupMocks: func(f *fixture) {
				f.cache.On("Get", mock.Anything, 1).Return(nil, errors.New("redis down"))
				f.repo.On("FindByID", mock.Anything, 1).Return(janeDoe(1), nil)
				f.cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
			},
		},
		{
			name:       "validation - non-positive id",
			id:         0,
			setupMocks: func(f *fixture) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   404,
			setupMocks: func(f *fixture) {
				f.cache.On("Get", mock.Anything, 404).Return(nil, cache.ErrMiss)
				f.repo.On("FindByID", mock.Anything, 404).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "generic repository error",
			id:   5,
			setupMocks: func(f *fixture) {
				f.cache.On("Get", mock.Anything, 5).Return(nil, cache.ErrMiss)
				f.repo.On("FindByID", mock.Anything, 5).Return(nil, errors.New("db fail"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(time.UTC)
			tt.setupMocks(f)

			got, err := f.svc.Get(context.Background(), tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, janeDoe(tt.id), got)
			}
			f.assertExpectations(t)
		})
	}
}

func TestRegistrationService_List(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		filter    ListFilter
		wantQuery repository.PageQuery
		wantErr   bool
	}{
		{name: "happy path", limit: 10, offset: 20, wantQuery: repository.PageQuery{Limit: 10, Offset: 20}},
		{name: "zero limit uses default", limit: 0, offset: -1, wantQuery: repository.PageQuery{Limit: 10, Offset: 0}},
		{name: "limit is capped", limit: 1000, wantQuery: repository.PageQuery{Limit: 100}},
		{
			name:      "filter is forwarded",
			limit:     5,
			filter:    ListFilter{Type: model.TypeCheckOut, CustomerID: "C1"},
			wantQuery: repository.PageQuery{Limit: 5},
		},
		{name: "repository error", limit: 10, wantQuery: repository.PageQuery{Limit: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(time.UTC)
			wantFilter := repository.Filter{Type: tt.filter.Type, CustomerID: tt.filter.CustomerID}
			if tt.wantErr {
				f.repo.On("List", mock.Anything, tt.wantQuery, wantFilter).Return(nil, errors.New("db fail"))
			} else {
				f.repo.On("List", mock.Anything, tt.wantQuery, wantFilter).Return(&repository.PageResult[model.Registration]{
					Items: []model.Registration{*janeDoe(1), *janeDoe(2)},
					Total: 2,
				}, nil)
			}

			res, err := f.svc.List(context.Background(), tt.limit, tt.offset, tt.filter)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, res.Items, 2)
				assert.Equal(t, 2, res.Total)
			}
			f.assertExpectations(t)
		})
	}
}

func TestRegistrationService_Today(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	f := newFixture(loc)

	// 15:30 UTC on Jan 1 is 01:30 on Jan 2 at UTC+10.
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, loc)
	to := time.Date(2024, 1, 3, 0, 0, 0, 0, loc)
	f.repo.On("ListBetween", mock.Anything, from, to).Return([]model.Registration{*janeDoe(1)}, nil)

	items, err := f.svc.Today(context.Background())

	require.NoError(t, err)
	assert.Len(t, items, 1)
	f.assertExpectations(t)
}

func TestRegistrationService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		setupMocks func(f *fixture)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name: "happy path",
			id:   1,
			setupMocks: func(f *fixture) {
				f.repo.On("FindByID", mock.Anything, 1).Return(janeDoe(1), nil)
				f.repo.On("Delete", mock.Anything, 1).Return(nil)
				f.cache.On("Delete", mock.Anything, 1).Return(nil)
			},
		},
		{
			name:       "validation - negative id",
			id:         -1,
			setupMocks: func(f *fixture) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found",
			id:   404,
			setupMocks: func(f *fixture) {
				f.repo.On("FindByID", mock.Anything, 404).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "repository delete error keeps cache",
			id:   2,
			setupMocks: func(f *fixture) {
				f.repo.On("FindByID", mock.Anything, 2).Return(janeDoe(2), nil)
				f.repo.On("Delete", mock.Anything, 2).Return(errors.New("db fail"))
			},
			wantAnyErr: true,
		},
		{
			name: "cache eviction failure is tolerated",
			id:   3,
			setupMocks: func(f *fixture) {
				f.repo.On("FindByID", mock.Anything, 3).Return(janeDoe(3), nil)
				f.repo.On("Delete", mock.Anything, 3).Return(nil)
				f.cache.On("Delete", mock.Anything, 3).Return(errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(time.UTC)
			tt.setupMocks(f)

			err := f.svc.Delete(context.Background(), tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestRegistrationService_ExportDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	t.Run("happy path", func(t *testing.T) {
		f := newFixture(time.UTC)
		f.repo.On("ListBetween", mock.Anything, day, next).Return([]model.Registration{*janeDoe(1)}, nil)

		var uploaded string
		f.store.On("Put", mock.Anything, "registrations/2024-01-01.json", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
			return o.ContentType == "application/json" && o.Metadata["registration-count"] == "1"
		})).Return(func(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
			b, _ := io.ReadAll(r)
			uploaded = string(b)
			return storage.ObjectInfo{Key: key, Size: opt.Size, ETag: "etag"}
		}, nil)
		f.store.On("PresignGet", mock.Anything, "registrations/2024-01-01.json", time.Minute).Return("https://minio/signed", nil)

		res, err := f.svc.ExportDay(context.Background(), day.Add(13*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", res.Day)
		assert.Equal(t, 1, res.Count)
		assert.Equal(t, "https://minio/signed", res.URL)
		assert.Equal(t, int64(len(uploaded)), res.Size)
		assert.True(t, strings.HasPrefix(uploaded, `[{"Id":1,"Type":"CheckIn","Date":"2024-01-01T00:00:00Z"`))
		f.assertExpectations(t)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newFixture(time.UTC)
		f.repo.On("ListBetween", mock.Anything, day, next).Return([]model.Registration{}, nil)
		f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("storage fail"))

		res, err := f.svc.ExportDay(context.Background(), day)

		assert.ErrorContains(t, err, "upload to storage: storage fail")
		assert.Nil(t, res)
		f.assertExpectations(t)
	})

	t.Run("no storage configured", func(t *testing.T) {
		svc := NewRegistrationService(new(repoMocks.MockRegistrationRepository), Dependencies{})

		_, err := svc.ExportDay(context.Background(), day)
		assert.ErrorIs(t, err, ErrExportUnavailable)
	})
}

func TestRegistrationService_OpenExport(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		f := newFixture(time.UTC)
		body := io.NopCloser(strings.NewReader("[]"))
		f.store.On("Get", mock.Anything, "registrations/2024-01-01.json").
			Return(body, storage.ObjectInfo{Key: "registrations/2024-01-01.json", Size: 2}, nil)

		rc, info, err := f.svc.OpenExport(context.Background(), day)

		require.NoError(t, err)
		defer rc.Close()
		assert.Equal(t, int64(2), info.Size)
		f.assertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(time.UTC)
		f.store.On("Get", mock.Anything, "registrations/2024-01-01.json").
			Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound)

		_, _, err := f.svc.OpenExport(context.Background(), day)

		assert.ErrorIs(t, err, ErrExportNotFound)
		f.assertExpectations(t)
	})
}
