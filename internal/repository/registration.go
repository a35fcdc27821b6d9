package repository

import (
	"context"
	"time"

	"regapi/internal/model"
)

// RegistrationRepository defines data access for registrations using SQL queries only.
// No business logic here, persistence only.
type RegistrationRepository interface {
	// Create inserts a new registration. The database assigns Id; any Id on reg is ignored.
	// Returns the stored registration.
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)

	// FindByID returns a registration by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id int) (*model.Registration, error)

	// List returns a paginated, filtered list of registrations and the total row count.
	List(ctx context.Context, pq PageQuery, f Filter) (*PageResult[model.Registration], error)

	// ListBetween returns registrations whose Date lies in [from, to), oldest first.
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Registration, error)

	// Delete removes a registration by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// Filter narrows List results. Empty fields do not filter.
type Filter struct {
	Type       string
	CustomerID string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
