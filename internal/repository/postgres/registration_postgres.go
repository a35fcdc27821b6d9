package postgres

import (
	"context"
	"database/sql"
	"time"

	"regapi/internal/model"
	"regapi/internal/repository"
)

const registrationColumns = `id, type, date, customer_id, customer_name, passport, address, amount, total, culture, phone_number`

// RegistrationPostgres is a PostgreSQL implementation of repository.RegistrationRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RegistrationPostgres struct {
	db *sql.DB
}

// NewRegistrationPostgres creates a new RegistrationPostgres repository.
func NewRegistrationPostgres(db *sql.DB) *RegistrationPostgres {
	return &RegistrationPostgres{db: db}
}

var _ repository.RegistrationRepository = (*RegistrationPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(s rowScanner) (model.Registration, error) {
	var r model.Registration
	err := s.Scan(
		&r.Id,
		&r.Type,
		&r.Date,
		&r.CustomerId,
		&r.CustomerName,
		&r.Passport,
		&r.Address,
		&r.Amount,
		&r.Total,
		&r.Culture,
		&r.PhoneNumber,
	)
	return r, err
}

// Create inserts a new registration row and returns the stored record.
func (r *RegistrationPostgres) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	const q = `
		INSERT INTO registrations (type, date, customer_id, customer_name, passport, address, amount, total, culture, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + registrationColumns
	row := r.db.QueryRowContext(ctx, q,
		reg.Type,
		reg.Date,
		reg.CustomerId,
		reg.CustomerName,
		reg.Passport,
		reg.Address,
		reg.Amount,
		reg.Total,
		reg.Culture,
		reg.PhoneNumber,
	)
	out, err := scanRegistration(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single registration by its ID.
func (r *RegistrationPostgres) FindByID(ctx context.Context, id int) (*model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	out, err := scanRegistration(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns registrations using LIMIT/OFFSET pagination and a total count.
func (r *RegistrationPostgres) List(ctx context.Context, pq repository.PageQuery, f repository.Filter) (*repository.PageResult[model.Registration], error) {
	const where = ` WHERE ($1 = '' OR type = $1) AND ($2 = '' OR customer_id = $2)`

	const qCount = `SELECT COUNT(*) FROM registrations` + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, f.Type, f.CustomerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `SELECT ` + registrationColumns + ` FROM registrations` + where + `
		ORDER BY date DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, qList, f.Type, f.CustomerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Registration]{
		Items: items,
		Total: total,
	}, nil
}

// ListBetween returns registrations dated in [from, to).
func (r *RegistrationPostgres) ListBetween(ctx context.Context, from, to time.Time) ([]model.Registration, error) {
	const q = `SELECT ` + registrationColumns + ` FROM registrations
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, reg)
	}
	return items, rows.Err()
}

// Delete removes a registration by ID. It does not return an error if the row does not exist.
func (r *RegistrationPostgres) Delete(ctx context.Context, id int) error {
	const q = `DELETE FROM registrations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
