package checkout

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/processor"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeOrderStore keeps deep copies, like a real database would.
type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*model.Order
	inserts   int
	insertErr error
	updateErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*model.Order)}
}

func copyOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

func (s *fakeOrderStore) Insert(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber ||
			(order.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *order.IdempotencyKey) {
			return fmt.Errorf("failed to create order: %w", repository.ErrDuplicateOrder)
		}
	}
	s.orders[order.ID] = copyOrder(order)
	return nil
}

func (s *fakeOrderStore) UpdateByID(_ context.Context, id uuid.UUID, u model.OrderUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateErr != nil {
		return false, s.updateErr
	}
	o, ok := s.orders[id]
	if !ok || (u.UnlessPaid && o.PaymentStatus == model.PaymentStatusPaid) {
		return false, nil
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	if u.ProcessorPaymentRef != nil {
		o.ProcessorPaymentRef = u.ProcessorPaymentRef
	}
	if u.ProcessorSignature != nil {
		o.ProcessorSignature = u.ProcessorSignature
	}
	if u.FailureReason != nil {
		o.FailureReason = u.FailureReason
	}
	return true, nil
}

func (s *fakeOrderStore) GetByIdempotencyKey(_ context.Context, key string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			return copyOrder(o), nil
		}
	}
	return nil, nil
}

func (s *fakeOrderStore) get(id uuid.UUID) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.orders[id]; ok {
		return copyOrder(o)
	}
	return nil
}

func (s *fakeOrderStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateOrder(ctx context.Context, req processor.CreateOrderRequest) (*processor.RemoteOrder, error) {
	args := m.Called(ctx, req)
	if order, ok := args.Get(0).(*processor.RemoteOrder); ok {
		return order, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProcessor) VerifyPayment(ctx context.Context, req processor.VerifyRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *mockProcessor) KeyID() string { return "key_test" }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]events.Type, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeAddressBook struct {
	mu        sync.Mutex
	addresses map[uuid.UUID]model.Address
}

func newFakeAddressBook() *fakeAddressBook {
	return &fakeAddressBook{addresses: make(map[uuid.UUID]model.Address)}
}

func (b *fakeAddressBook) Get(_ context.Context, customerID string, id uuid.UUID) (*model.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.addresses[id]
	if !ok || a.CustomerID != customerID {
		return nil, model.ErrAddressNotFound
	}
	return &a, nil
}

func (b *fakeAddressBook) Create(_ context.Context, customerID string, f model.AddressFields) (*model.Address, error) {
	if !f.Complete() {
		return nil, model.ErrAddressIncomplete
	}
	a := model.Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Email:      f.Email,
		Phone:      f.Phone,
		Line1:      f.Line1,
		City:       f.City,
		State:      f.State,
		Zip:        f.Zip,
		Country:    f.Country,
	}

	b.mu.Lock()
	b.addresses[a.ID] = a
	b.mu.Unlock()
	return &a, nil
}

func (b *fakeAddressBook) add(customerID string) uuid.UUID {
	a, _ := b.Create(context.Background(), customerID, model.AddressFields{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "9999999999",
		Line1:     "12 MG Road",
		City:      "Pune",
		Country:   "IN",
	})
	return a.ID
}

type harness struct {
	orch      *Orchestrator
	ctrl      *Controller
	registry  *Registry
	store     *fakeOrderStore
	proc      *mockProcessor
	carts     *cart.Manager
	pub       *recordingPublisher
	addresses *fakeAddressBook
}

func newHarness() *harness {
	logger := zerolog.Nop()
	h := &harness{
		registry:  NewRegistry(),
		store:     newFakeOrderStore(),
		proc:      &mockProcessor{},
		carts:     cart.NewManager(cart.NewMemoryStore(), logger),
		pub:       &recordingPublisher{},
		addresses: newFakeAddressBook(),
	}
	rules := &pricing.Rules{
		Currency:              "INR",
		CurrencyExponent:      2,
		TaxRate:               decimal.Zero,
		ShippingFee:           decimal.Zero,
		FreeShippingThreshold: decimal.Zero,
	}
	h.orch = NewOrchestrator(h.store, h.proc, h.carts, pricing.NewStaticProvider(rules), h.pub, logger)
	h.ctrl = NewController(h.addresses, logger)
	return h
}

// sessionAtPayment returns a session that has passed the shipping step.
func (h *harness) sessionAtPayment(customerID string) *Session {
	s := h.registry.Create(customerID)
	id := h.addresses.add(customerID)
	if _, err := h.ctrl.SelectShipping(context.Background(), s, ShippingSelection{AddressID: &id}); err != nil {
		panic(err)
	}
	return s
}

// fillCart puts product A, quantity 2 at 500, into the customer's cart.
func (h *harness) fillCart(customerID string) {
	ctx := context.Background()
	item := cart.Item{ID: "A", Name: "Product A", UnitPrice: decimal.NewFromInt(500)}
	h.carts.Add(ctx, customerID, item)
	h.carts.Add(ctx, customerID, item)
}

func (h *harness) cartItems(customerID string) []cart.Item {
	return h.carts.Get(context.Background(), customerID).Items
}

func remoteOrder(id string, amount int64) *processor.RemoteOrder {
	return &processor.RemoteOrder{ID: id, Amount: amount, Currency: "INR", Status: "created"}
}
