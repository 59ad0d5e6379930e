package checkout

import (
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// State is the orchestration state of a checkout session.
type State string

const (
	StateNotStarted          State = "NOT_STARTED"
	StateCreatingOrder       State = "CREATING_ORDER"
	StateFinalizing          State = "FINALIZING"
	StateAwaitingRemoteOrder State = "AWAITING_REMOTE_ORDER"
	StateAwaitingPayment     State = "AWAITING_PAYMENT"
	StateVerifying           State = "VERIFYING"
	StateSucceeded           State = "SUCCEEDED"
	StateFailed              State = "FAILED"
)

// Terminal reports whether no further transition happens without a new submit.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Prefill is the contact data shown in the payment collection widget.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PaymentHandle is what the client needs to open the collection widget.
type PaymentHandle struct {
	ProcessorOrderRef string  `json:"processorOrderRef"`
	Amount            int64   `json:"amount"` // minor units, as echoed by the processor
	Currency          string  `json:"currency"`
	KeyID             string  `json:"keyId"`
	OrderNumber       string  `json:"orderNumber"`
	Prefill           Prefill `json:"prefill"`
}

// ErrorView is the single user-facing message of a failed attempt.
type ErrorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// View is a consistent snapshot of a session.
type View struct {
	ID            uuid.UUID           `json:"id"`
	Step          Step                `json:"step"`
	State         State               `json:"state"`
	Busy          bool                `json:"busy"`
	CanSubmit     bool                `json:"canSubmit"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod,omitempty"`
	Address       *model.Address      `json:"address,omitempty"`
	OrderID       *uuid.UUID          `json:"orderId,omitempty"`
	OrderNumber   string              `json:"orderNumber,omitempty"`
	Payment       *PaymentHandle      `json:"payment,omitempty"`
	Error         *ErrorView          `json:"error,omitempty"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Session is one customer's checkout attempt. All fields are guarded by mu;
// busy is the only mutual-exclusion primitive of the orchestration.
type Session struct {
	ID         uuid.UUID
	CustomerID string

	mu            sync.Mutex
	step          Step
	state         State
	prevState     State
	prevErr       *model.DomainError
	busy          bool
	address       *model.Address
	paymentMethod model.PaymentMethod
	orderID       *uuid.UUID
	orderNumber   string
	payment       *PaymentHandle
	lastErr       *model.DomainError
	updatedAt     time.Time
}

func newSession(customerID string) *Session {
	return &Session{
		ID:         uuid.New(),
		CustomerID: customerID,
		step:       StepShipping,
		state:      StateNotStarted,
		updatedAt:  time.Now().UTC(),
	}
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:            s.ID,
		Step:          s.step,
		State:         s.state,
		Busy:          s.busy,
		CanSubmit:     s.step == StepPayment && !s.busy,
		PaymentMethod: s.paymentMethod,
		OrderNumber:   s.orderNumber,
		UpdatedAt:     s.updatedAt,
	}
	if s.address != nil {
		a := *s.address
		v.Address = &a
	}
	if s.orderID != nil {
		id := *s.orderID
		v.OrderID = &id
	}
	if s.payment != nil && s.state == StateAwaitingPayment {
		p := *s.payment
		v.Payment = &p
	}
	if s.lastErr != nil {
		v.Error = &ErrorView{Code: s.lastErr.Code, Message: s.lastErr.Message}
	}
	return v
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

// begin atomically claims the session for one orchestration. It returns the
// resolved address to use.
func (s *Session) begin(method model.PaymentMethod) (model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return model.Address{}, model.ErrCheckoutInProgress
	}
	if s.step != StepPayment {
		return model.Address{}, model.ErrInvalidStep
	}
	if s.address == nil {
		return model.Address{}, model.ErrAddressNotFound
	}

	s.busy = true
	s.prevState, s.prevErr = s.state, s.lastErr
	s.state = StateCreatingOrder
	s.lastErr = nil
	s.paymentMethod = method
	s.touch()
	return *s.address, nil
}

// abort releases a claim that was rejected before any side effect.
func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.state, s.lastErr = s.prevState, s.prevErr
	s.touch()
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.touch()
}

func (s *Session) setOrder(id uuid.UUID, orderNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderID = &id
	s.orderNumber = orderNumber
	s.payment = nil
}

// adoptOrder points the session at an order placed by an earlier submit,
// including the payment method it was placed with.
func (s *Session) adoptOrder(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := order.ID
	s.orderID = &id
	s.orderNumber = order.OrderNumber
	s.paymentMethod = order.PaymentMethod
	s.payment = nil
}

// suspend parks the orchestration until a payment continuation arrives.
// The session stays busy.
func (s *Session) suspend(handle PaymentHandle) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateAwaitingPayment
	s.payment = &handle
	s.lastErr = nil
	s.touch()
	return s.viewLocked()
}

// resume moves a suspended orchestration to next and returns the pending
// order. Only one continuation can win.
func (s *Session) resume(next State) (uuid.UUID, PaymentHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPayment || s.payment == nil || s.orderID == nil {
		return uuid.Nil, PaymentHandle{}, model.ErrNoPaymentPending
	}
	s.state = next
	s.touch()
	return *s.orderID, *s.payment, nil
}

// succeeded reports whether the session already completed payment for ref.
func (s *Session) succeeded(ref string) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSucceeded || s.payment == nil || s.payment.ProcessorOrderRef != ref {
		return View{}, false
	}
	return s.viewLocked(), true
}

func (s *Session) succeed() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateSucceeded
	s.busy = false
	s.lastErr = nil
	s.advanceOnSuccess()
	s.touch()
	return s.viewLocked()
}

func (s *Session) fail(err *model.DomainError) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateFailed
	s.busy = false
	s.lastErr = err
	s.touch()
	return s.viewLocked()
}

// Registry holds the checkout sessions of this instance.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Create starts a new session for the customer at the SHIPPING step.
func (r *Registry) Create(customerID string) *Session {
	s := newSession(customerID)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns the customer's session. Sessions of other customers are
// reported as not found.
func (r *Registry) Get(customerID string, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok || s.CustomerID != customerID {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// Prune drops idle sessions last touched before cutoff. Busy sessions are
// kept regardless of age, so a suspended payment can always be completed or
// dismissed.
func (r *Registry) Prune(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := !s.busy && s.updatedAt.Before(cutoff)
		s.mu.Unlock()

		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
