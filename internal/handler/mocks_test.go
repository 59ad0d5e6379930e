package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, customerID string) cart.View {
	return m.Called(ctx, customerID).Get(0).(cart.View)
}

func (m *MockCartService) AddProduct(ctx context.Context, customerID, productID string) (cart.View, error) {
	args := m.Called(ctx, customerID, productID)
	return args.Get(0).(cart.View), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, customerID, itemID string) cart.View {
	return m.Called(ctx, customerID, itemID).Get(0).(cart.View)
}

func (m *MockCartService) Increment(ctx context.Context, customerID, itemID string) cart.View {
	return m.Called(ctx, customerID, itemID).Get(0).(cart.View)
}

func (m *MockCartService) Decrement(ctx context.Context, customerID, itemID string) cart.View {
	return m.Called(ctx, customerID, itemID).Get(0).(cart.View)
}

func (m *MockCartService) Clear(ctx context.Context, customerID string) cart.View {
	return m.Called(ctx, customerID).Get(0).(cart.View)
}

// MockAddressService is a mock implementation of AddressService.
type MockAddressService struct {
	mock.Mock
}

func (m *MockAddressService) List(ctx context.Context, customerID string) ([]model.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Address), args.Error(1)
}

func (m *MockAddressService) Create(ctx context.Context, customerID string, fields model.AddressFields) (*model.Address, error) {
	args := m.Called(ctx, customerID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

func (m *MockAddressService) Get(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error) {
	args := m.Called(ctx, customerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Address), args.Error(1)
}

// MockConfirmationService is a mock implementation of ConfirmationService.
type MockConfirmationService struct {
	mock.Mock
}

func (m *MockConfirmationService) Resolve(ctx context.Context, customerID, reference string) (*model.Order, error) {
	args := m.Called(ctx, customerID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Start(ctx context.Context, customerID string) checkout.View {
	return m.Called(ctx, customerID).Get(0).(checkout.View)
}

func (m *MockCheckoutService) Get(customerID string, sessionID uuid.UUID) (checkout.View, error) {
	args := m.Called(customerID, sessionID)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) SelectShipping(ctx context.Context, customerID string, sessionID uuid.UUID, sel checkout.ShippingSelection) (checkout.View, error) {
	args := m.Called(ctx, customerID, sessionID, sel)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) Back(customerID string, sessionID uuid.UUID) (checkout.View, error) {
	args := m.Called(customerID, sessionID)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, customerID string, sessionID uuid.UUID, req checkout.SubmitRequest) (checkout.View, error) {
	args := m.Called(ctx, customerID, sessionID, req)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) CompletePayment(ctx context.Context, customerID string, sessionID uuid.UUID, p checkout.PaymentSuccess) (checkout.View, error) {
	args := m.Called(ctx, customerID, sessionID, p)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) DismissPayment(ctx context.Context, customerID string, sessionID uuid.UUID) (checkout.View, error) {
	args := m.Called(ctx, customerID, sessionID)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) FailPayment(ctx context.Context, customerID string, sessionID uuid.UUID, f checkout.PaymentFailure) (checkout.View, error) {
	args := m.Called(ctx, customerID, sessionID, f)
	return args.Get(0).(checkout.View), args.Error(1)
}

func (m *MockCheckoutService) PruneIdle(maxIdle time.Duration) int {
	return m.Called(maxIdle).Int(0)
}

// newRequest builds a request authenticated as customer. An empty customer
// leaves the request anonymous.
func newRequest(method, target, body, customer string, pathValues map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if customer != "" {
		req = req.WithContext(middleware.WithCustomerID(req.Context(), customer))
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}
