package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"regapi/internal/cache"
	"regapi/internal/model"
	"regapi/internal/queue"
	"regapi/internal/repository"
	"regapi/internal/storage"
)

var (
	ErrInvalidID         = errors.New("id must be a positive integer")
	ErrNotFound          = errors.New("registration not found")
	ErrExportNotFound    = errors.New("export not found")
	ErrExportUnavailable = errors.New("export storage is not configured")
)

var tracer = otel.Tracer("regapi/service")

const (
	defaultListLimit     = 10
	maxListLimit         = 100
	defaultPresignExpiry = 15 * time.Minute

	// DayLayout is the calendar-day format used in export keys and URLs.
	DayLayout = "2006-01-02"
)

// RegistrationListResult is the service-level DTO for paginated registrations.
type RegistrationListResult struct {
	Items []model.Registration `json:"data"`
	Total int                  `json:"total"`
}

// ListFilter narrows List results. Empty fields match everything.
type ListFilter struct {
	Type       string
	CustomerID string
}

// ExportResult describes a stored daily export.
type ExportResult struct {
	Day   string `json:"day"`
	Key   string `json:"key"`
	Count int    `json:"count"`
	Size  int64  `json:"size"`
	ETag  string `json:"etag,omitempty"`
	URL   string `json:"url"`
}

// RegistrationService defines the use cases of the front desk.
type RegistrationService interface {
	// Create stores a new registration. The Id on reg is ignored; the stored record carries the assigned Id.
	Create(ctx context.Context, reg model.Registration) (*model.Registration, error)

	// Get returns a single registration, served from cache when possible.
	Get(ctx context.Context, id int) (*model.Registration, error)

	// List returns registrations using limit/offset and a total count.
	List(ctx context.Context, limit, offset int, f ListFilter) (*RegistrationListResult, error)

	// Today returns the registrations dated on the current day in the service time zone.
	Today(ctx context.Context) ([]model.Registration, error)

	// Delete removes a registration and evicts it from cache.
	Delete(ctx context.Context, id int) error

	// ExportDay writes the registrations of day as a JSON array to object storage.
	ExportDay(ctx context.Context, day time.Time) (*ExportResult, error)

	// OpenExport streams a previously written export.
	OpenExport(ctx context.Context, day time.Time) (io.ReadCloser, storage.ObjectInfo, error)
}

// Dependencies carries the optional collaborators of the service. Nil fields
// fall back to no-op or default implementations.
type Dependencies struct {
	Cache         cache.RegistrationCache
	Publisher     queue.Publisher
	Store         storage.Storage
	Location      *time.Location
	Logger        *slog.Logger
	PresignExpiry time.Duration
	Now           func() time.Time
}

type registrationService struct {
	repo          repository.RegistrationRepository
	cache         cache.RegistrationCache
	publisher     queue.Publisher
	store         storage.Storage
	loc           *time.Location
	log           *slog.Logger
	presignExpiry time.Duration
	now           func() time.Time
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(repo repository.RegistrationRepository, deps Dependencies) RegistrationService {
	s := &registrationService{
		repo:          repo,
		cache:         deps.Cache,
		publisher:     deps.Publisher,
		store:         deps.Store,
		loc:           deps.Location,
		log:           deps.Logger,
		presignExpiry: deps.PresignExpiry,
		now:           deps.Now,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.publisher == nil {
		s.publisher = queue.Noop{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.log == nil {
		s.log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.presignExpiry <= 0 {
		s.presignExpiry = defaultPresignExpiry
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *registrationService) Create(ctx context.Context, reg model.Registration) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "RegistrationService.Create")
	defer span.End()

	reg.Id = 0
	stored, err := s.repo.Create(ctx, &reg)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	span.SetAttributes(attribute.Int("registration.id", stored.Id))

	if err := s.cache.Set(ctx, stored); err != nil {
		s.log.WarnContext(ctx, "registration_cache_set_failed", "registration_id", stored.Id, "error", err.Error())
	}

	event := queue.RegistrationCreatedEvent{
		RegistrationID: stored.Id,
		Registration:   *stored,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.PublishRegistrationCreated(ctx, event); err != nil {
		s.log.WarnContext(ctx, "registration_event_publish_failed", "registration_id", stored.Id, "error", err.Error())
	}

	return stored, nil
}

func (s *registrationService) Get(ctx context.Context, id int) (*model.Registration, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	ctx, span := tracer.Start(ctx, "RegistrationService.Get",
		trace.WithAttributes(attribute.Int("registration.id", id)))
	defer span.End()

	reg, err := s.cache.Get(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return reg, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.WarnContext(ctx, "registration_cache_get_failed", "registration_id", id, "error", err.Error())
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	reg, err = s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, reg); err != nil {
		s.log.WarnContext(ctx, "registration_cache_set_failed", "registration_id", id, "error", err.Error())
	}
	return reg, nil
}

// List returns paginated registrations without exposing repository types.
func (s *registrationService) List(ctx context.Context, limit, offset int, f ListFilter) (*RegistrationListResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx,
		repository.PageQuery{Limit: limit, Offset: offset},
		repository.Filter{Type: f.Type, CustomerID: f.CustomerID},
	)
	if err != nil {
		return nil, err
	}
	return &RegistrationListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *registrationService) Today(ctx context.Context) ([]model.Registration, error) {
	from, to := s.dayBounds(s.now())
	return s.repo.ListBetween(ctx, from, to)
}

func (s *registrationService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "registration_cache_delete_failed", "registration_id", id, "error", err.Error())
	}
	return nil
}

func (s *registrationService) ExportDay(ctx context.Context, day time.Time) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportUnavailable
	}
	from, to := s.dayBounds(day)
	label := from.Format(DayLayout)

	ctx, span := tracer.Start(ctx, "RegistrationService.ExportDay",
		trace.WithAttributes(attribute.String("export.day", label)))
	defer span.End()

	items, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := exportKey(from)
	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"registration-count": strconv.Itoa(len(items)),
			"export-day":         label,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.log.InfoContext(ctx, "registration_export_written", "key", key, "count", len(items), "size", info.Size)

	return &ExportResult{
		Day:   label,
		Key:   key,
		Count: len(items),
		Size:  info.Size,
		ETag:  info.ETag,
		URL:   url,
	}, nil
}

func (s *registrationService) OpenExport(ctx context.Context, day time.Time) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, storage.ObjectInfo{}, ErrExportUnavailable
	}
	from, _ := s.dayBounds(day)
	rc, info, err := s.store.Get(ctx, exportKey(from))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrExportNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

// dayBounds returns [midnight, next midnight) of t's calendar day in the service zone.
func (s *registrationService) dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(s.loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 0, 1)
}

func exportKey(day time.Time) string {
	return "registrations/" + day.Format(DayLayout) + ".json"
}
