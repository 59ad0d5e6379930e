package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductRepository is the read-only catalog lookup used to price cart additions.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
// Lookups return (nil, nil) when no order matches.
type OrderRepository interface {
	// Insert stores the order together with its item snapshot in one transaction.
	Insert(ctx context.Context, order *model.Order) error

	// UpdateByID overwrites the non-nil fields of update. It reports whether a
	// row was written; false means the order is missing or, with UnlessPaid,
	// already PAID.
	UpdateByID(ctx context.Context, id uuid.UUID, update model.OrderUpdate) (bool, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	GetByProcessorOrderRef(ctx context.Context, ref string) (*model.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
}

// AddressRepository defines the interface for address book data access.
type AddressRepository interface {
	// ListByCustomer returns a customer's addresses, oldest first.
	ListByCustomer(ctx context.Context, customerID string) ([]model.Address, error)

	// Create inserts the address. The first address of a customer becomes the
	// default; IsDefault and CreatedAt are filled in from the stored row.
	Create(ctx context.Context, address *model.Address) error

	// GetByID returns the customer's address with the given id, or nil when it
	// does not exist or belongs to another customer.
	GetByID(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error)
}
