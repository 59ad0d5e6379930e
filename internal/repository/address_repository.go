package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const addressColumns = `
	id, customer_id, first_name, last_name, email, phone,
	line1, city, state, zip, country, is_default, created_at
`

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// ListByCustomer returns a customer's addresses, oldest first.
func (r *addressRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE customer_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// Create inserts the address, marking it default when the customer has none.
func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `
		INSERT INTO addresses (id, customer_id, first_name, last_name, email, phone,
			line1, city, state, zip, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12 AND NOT EXISTS (SELECT 1 FROM addresses WHERE customer_id = $2))
		RETURNING is_default, created_at
	`

	insert := func(allowDefault bool) error {
		return r.pool.QueryRow(ctx, query,
			a.ID, a.CustomerID, a.FirstName, a.LastName, a.Email, a.Phone,
			a.Line1, a.City, a.State, a.Zip, a.Country, allowDefault,
		).Scan(&a.IsDefault, &a.CreatedAt)
	}

	err := insert(true)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "idx_addresses_one_default" {
		// A concurrent create claimed the default first.
		err = insert(false)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", a.CustomerID).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	r.logger.Debug().
		Str("address_id", a.ID.String()).
		Bool("is_default", a.IsDefault).
		Msg("address created successfully")

	return nil
}

// GetByID returns the customer's address with the given id.
func (r *addressRepository) GetByID(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND customer_id = $2`

	a, err := scanAddress(r.pool.QueryRow(ctx, query, id, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("address_id", id.String()).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return a, nil
}

func scanAddress(row pgx.Row) (*model.Address, error) {
	var a model.Address
	err := row.Scan(
		&a.ID, &a.CustomerID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.Line1, &a.City, &a.State, &a.Zip, &a.Country, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
