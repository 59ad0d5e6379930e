package service

import (
	"context"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// CartService defines operations on a customer's cart. Unknown item ids are
// no-ops; storage failures never surface here.
type CartService interface {
	// Get returns the current cart.
	Get(ctx context.Context, customerID string) cart.View

	// AddProduct adds one unit of a catalog product, priced from the catalog.
	AddProduct(ctx context.Context, customerID, productID string) (cart.View, error)

	Remove(ctx context.Context, customerID, itemID string) cart.View
	Increment(ctx context.Context, customerID, itemID string) cart.View
	Decrement(ctx context.Context, customerID, itemID string) cart.View
	Clear(ctx context.Context, customerID string) cart.View
}

// AddressService defines operations on a customer's address book.
type AddressService interface {
	// List returns the customer's addresses, oldest first.
	List(ctx context.Context, customerID string) ([]model.Address, error)

	// Create validates and appends an address. The first one becomes the default.
	Create(ctx context.Context, customerID string, fields model.AddressFields) (*model.Address, error)

	// Get returns one of the customer's addresses.
	Get(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error)
}

// ConfirmationService reads placed orders for the confirmation page.
type ConfirmationService interface {
	// Resolve finds an order by internal id, then order number, then
	// processor order reference.
	Resolve(ctx context.Context, customerID, reference string) (*model.Order, error)
}

// CheckoutService drives checkout sessions for a customer. Every operation
// scopes the session to the customer; foreign sessions are not found.
type CheckoutService interface {
	// Start opens a new session at the shipping step.
	Start(ctx context.Context, customerID string) checkout.View

	Get(customerID string, sessionID uuid.UUID) (checkout.View, error)
	SelectShipping(ctx context.Context, customerID string, sessionID uuid.UUID, sel checkout.ShippingSelection) (checkout.View, error)
	Back(customerID string, sessionID uuid.UUID) (checkout.View, error)

	// Submit places the order. Saga failures come back as a FAILED view, not
	// as an error.
	Submit(ctx context.Context, customerID string, sessionID uuid.UUID, req checkout.SubmitRequest) (checkout.View, error)

	CompletePayment(ctx context.Context, customerID string, sessionID uuid.UUID, p checkout.PaymentSuccess) (checkout.View, error)
	DismissPayment(ctx context.Context, customerID string, sessionID uuid.UUID) (checkout.View, error)
	FailPayment(ctx context.Context, customerID string, sessionID uuid.UUID, f checkout.PaymentFailure) (checkout.View, error)

	// PruneIdle drops sessions untouched for longer than maxIdle.
	PruneIdle(maxIdle time.Duration) int
}
