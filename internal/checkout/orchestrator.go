package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/cart"
	"storefront/internal/events"
	"storefront/internal/model"
	"storefront/internal/money"
	"storefront/internal/pricing"
	"storefront/internal/processor"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderStore is the subset of the order repository the saga writes through.
type OrderStore interface {
	Insert(ctx context.Context, order *model.Order) error
	UpdateByID(ctx context.Context, id uuid.UUID, update model.OrderUpdate) (bool, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Order, error)
}

// PaymentProcessor creates remote orders and verifies payments.
type PaymentProcessor interface {
	CreateOrder(ctx context.Context, req processor.CreateOrderRequest) (*processor.RemoteOrder, error)
	VerifyPayment(ctx context.Context, req processor.VerifyRequest) (bool, error)
	KeyID() string
}

// Carts gives the saga a frozen copy of the cart and clears it on success.
type Carts interface {
	Snapshot(ctx context.Context, owner string) []cart.Item
	Clear(ctx context.Context, owner string)
}

// Pricer computes the money fields of a new order.
type Pricer interface {
	Calculate(lines []pricing.Line) pricing.Totals
	Rules() *pricing.Rules
}

// SubmitRequest starts an orchestration.
type SubmitRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	// IdempotencyKey is optional. A repeated key resumes the order it created.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// PaymentSuccess is the payload of the widget's success callback.
type PaymentSuccess struct {
	PaymentID string `json:"paymentId"`
	OrderRef  string `json:"orderRef"`
	Signature string `json:"signature"`
}

// PaymentFailure is the payload of the widget's failure callback.
type PaymentFailure struct {
	ReasonCode        string `json:"reasonCode"`
	ReasonDescription string `json:"reasonDescription"`
}

// Orchestrator runs the order lifecycle saga for checkout sessions.
type Orchestrator struct {
	orders         OrderStore
	processor      PaymentProcessor
	carts          Carts
	pricer         Pricer
	publisher      events.Publisher
	logger         zerolog.Logger
	newOrderNumber func() string
}

// NewOrchestrator wires the saga to its collaborators.
func NewOrchestrator(
	orders OrderStore,
	proc PaymentProcessor,
	carts Carts,
	pricer Pricer,
	publisher events.Publisher,
	logger zerolog.Logger,
) *Orchestrator {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Orchestrator{
		orders:         orders,
		processor:      proc,
		carts:          carts,
		pricer:         pricer,
		publisher:      publisher,
		logger:         logger.With().Str("service", "checkout").Logger(),
		newOrderNumber: newOrderNumber,
	}
}

// newOrderNumber returns a fresh human-facing order number. Every attempt
// gets a new one.
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), id[:10])
}

// Submit places the order for the session's cart. Rejections (validation,
// busy session, wrong step) are returned as errors and leave the session
// untouched. Saga failures are not errors: they end in a FAILED view that
// carries the user-facing message, with the cart kept and submit re-enabled.
func (o *Orchestrator) Submit(ctx context.Context, s *Session, req SubmitRequest) (View, error) {
	if !req.PaymentMethod.Valid() {
		return View{}, model.ErrInvalidPaymentMethod
	}

	address, err := s.begin(req.PaymentMethod)
	if err != nil {
		return View{}, err
	}

	// Once claimed, the saga runs to a terminal or suspended state even if
	// the caller goes away.
	ctx = context.WithoutCancel(ctx)

	log := o.logger.With().
		Str("session_id", s.ID.String()).
		Str("customer_id", s.CustomerID).
		Str("payment_method", string(req.PaymentMethod)).
		Logger()

	var key *string
	if req.IdempotencyKey != "" {
		key = &req.IdempotencyKey

		existing, err := o.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			log.Error().Err(err).Msg("failed to look up idempotency key")
			return s.fail(model.ErrOrderPersistence), nil
		}
		if existing != nil {
			return o.resumeExisting(s, existing, log)
		}
	}

	items := o.carts.Snapshot(ctx, s.CustomerID)
	if len(items) == 0 {
		s.abort()
		return View{}, model.ErrEmptyCart
	}

	order := o.buildOrder(s.CustomerID, items, address, req.PaymentMethod, key)
	log = log.With().Str("order_number", order.OrderNumber).Logger()

	if req.PaymentMethod == model.PaymentMethodCashOnDelivery {
		return o.placeCashOnDelivery(ctx, s, order, log)
	}
	return o.placeGateway(ctx, s, order, log)
}

func (o *Orchestrator) buildOrder(
	customerID string,
	items []cart.Item,
	address model.Address,
	method model.PaymentMethod,
	key *string,
) *model.Order {
	lines := make([]pricing.Line, 0, len(items))
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{UnitPrice: it.UnitPrice, Quantity: it.Quantity})

		var image *string
		if it.ImageRef != nil {
			ref := *it.ImageRef
			image = &ref
		}
		orderItems = append(orderItems, model.OrderItem{
			ID:        uuid.New(),
			ProductID: it.ID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			ImageRef:  image,
			Quantity:  it.Quantity,
		})
	}
	totals := o.pricer.Calculate(lines)

	return &model.Order{
		ID:              uuid.New(),
		OrderNumber:     o.newOrderNumber(),
		CustomerID:      customerID,
		IdempotencyKey:  key,
		Items:           orderItems,
		ShippingAddress: address,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		ShippingFee:     totals.ShippingFee,
		TotalAmount:     totals.Total,
		Currency:        totals.Currency,
		PaymentMethod:   method,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
	}
}

func (o *Orchestrator) placeCashOnDelivery(ctx context.Context, s *Session, order *model.Order, log zerolog.Logger) (View, error) {
	s.setState(StateFinalizing)

	if err := o.orders.Insert(ctx, order); err != nil {
		if existing := o.concurrentOrder(ctx, order, err, log); existing != nil {
			return o.resumeExisting(s, existing, log)
		}
		log.Error().Err(err).Msg("failed to insert cash on delivery order")
		return s.fail(model.ErrOrderPersistence), nil
	}
	s.setOrder(order.ID, order.OrderNumber)

	o.carts.Clear(ctx, s.CustomerID)
	o.publish(ctx, orderEvent(events.OrderCreated, order))

	log.Info().Str("order_id", order.ID.String()).Msg("cash on delivery order placed")
	return s.succeed(), nil
}

func (o *Orchestrator) placeGateway(ctx context.Context, s *Session, order *model.Order, log zerolog.Logger) (View, error) {
	s.setState(StateAwaitingRemoteOrder)

	amount, err := money.ToMinorUnits(order.TotalAmount, o.pricer.Rules().CurrencyExponent)
	if err != nil {
		log.Error().Err(err).Str("total", order.TotalAmount.String()).Msg("order total cannot be expressed in minor units")
		return s.fail(model.ErrOrderPersistence), nil
	}

	remote, err := o.processor.CreateOrder(ctx, processor.CreateOrderRequest{
		Amount:   amount,
		Currency: order.Currency,
		Receipt:  order.OrderNumber,
	})
	if err != nil {
		log.Error().Err(err).Int64("amount", amount).Msg("failed to create remote order")
		if errors.Is(err, processor.ErrUnavailable) {
			return s.fail(model.ErrProcessorUnavailable), nil
		}
		return s.fail(model.ErrPaymentFailed), nil
	}
	if remote.Amount != amount {
		log.Warn().
			Int64("amount", amount).
			Int64("echo", remote.Amount).
			Str("processor_order_ref", remote.ID).
			Msg("processor echoed a different amount")
	}

	ref := remote.ID
	order.ProcessorOrderRef = &ref
	log = log.With().Str("processor_order_ref", ref).Logger()

	if err := o.orders.Insert(ctx, order); err != nil {
		gap := orderEvent(events.ReconciliationGap, order)
		if existing := o.concurrentOrder(ctx, order, err, log); existing != nil {
			log.Warn().
				Str("existing_order_id", existing.ID.String()).
				Msg("reconciliation gap: remote order superseded by a concurrent submit with the same idempotency key")
			gap.Reason = "duplicate remote order for idempotency key"
			o.publish(ctx, gap)
			return o.resumeExisting(s, existing, log)
		}
		log.Error().Err(err).Msg("reconciliation gap: remote order has no local record")
		gap.Reason = "local order insert failed after remote order creation"
		o.publish(ctx, gap)
		return s.fail(model.ErrOrderPersistence), nil
	}
	s.setOrder(order.ID, order.OrderNumber)
	o.publish(ctx, orderEvent(events.OrderCreated, order))

	log.Info().Str("order_id", order.ID.String()).Msg("awaiting payment")
	return s.suspend(PaymentHandle{
		ProcessorOrderRef: ref,
		Amount:            remote.Amount,
		Currency:          order.Currency,
		KeyID:             o.processor.KeyID(),
		OrderNumber:       order.OrderNumber,
		Prefill:           prefill(order.ShippingAddress),
	}), nil
}

// concurrentOrder returns the order that won the idempotency key when
// inserting order failed on a duplicate. It returns nil for any other
// insert failure.
func (o *Orchestrator) concurrentOrder(ctx context.Context, order *model.Order, insertErr error, log zerolog.Logger) *model.Order {
	if order.IdempotencyKey == nil || !errors.Is(insertErr, repository.ErrDuplicateOrder) {
		return nil
	}
	existing, err := o.orders.GetByIdempotencyKey(ctx, *order.IdempotencyKey)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up idempotency key after duplicate insert")
		return nil
	}
	return existing
}

// resumeExisting continues from an order created by an earlier submit with
// the same idempotency key.
func (o *Orchestrator) resumeExisting(s *Session, existing *model.Order, log zerolog.Logger) (View, error) {
	log = log.With().
		Str("order_id", existing.ID.String()).
		Str("order_number", existing.OrderNumber).
		Logger()

	if existing.CustomerID != s.CustomerID {
		log.Warn().Msg("idempotency key belongs to another customer")
		s.abort()
		return View{}, model.ErrIdempotencyConsumed
	}
	if method := s.View().PaymentMethod; method != existing.PaymentMethod {
		log.Info().
			Str("requested", string(method)).
			Str("stored", string(existing.PaymentMethod)).
			Msg("idempotent submit follows the stored payment method")
	}

	switch {
	case existing.PaymentStatus == model.PaymentStatusPaid,
		existing.PaymentMethod == model.PaymentMethodCashOnDelivery && existing.Status != model.OrderStatusFailed:
		// The original success already cleared the cart.
		s.adoptOrder(existing)
		log.Info().Msg("idempotent submit resolved to a placed order")
		return s.succeed(), nil

	case existing.PaymentMethod == model.PaymentMethodGateway &&
		existing.PaymentStatus == model.PaymentStatusPending &&
		existing.Status == model.OrderStatusPending &&
		existing.ProcessorOrderRef != nil:
		amount, err := money.ToMinorUnits(existing.TotalAmount, o.pricer.Rules().CurrencyExponent)
		if err != nil {
			log.Error().Err(err).Msg("stored order total cannot be expressed in minor units")
			return s.fail(model.ErrOrderPersistence), nil
		}
		s.adoptOrder(existing)
		log.Info().Str("processor_order_ref", *existing.ProcessorOrderRef).Msg("idempotent submit resumed awaiting payment")
		return s.suspend(PaymentHandle{
			ProcessorOrderRef: *existing.ProcessorOrderRef,
			Amount:            amount,
			Currency:          existing.Currency,
			KeyID:             o.processor.KeyID(),
			OrderNumber:       existing.OrderNumber,
			Prefill:           prefill(existing.ShippingAddress),
		}), nil

	default:
		log.Info().Str("status", string(existing.Status)).Msg("idempotency key already consumed")
		s.abort()
		return View{}, model.ErrIdempotencyConsumed
	}
}

// CompletePayment handles the success callback: it verifies the payment once
// and settles the order. A repeated callback for a settled payment returns
// the settled view without calling the processor again.
func (o *Orchestrator) CompletePayment(ctx context.Context, s *Session, p PaymentSuccess) (View, error) {
	if v, ok := s.succeeded(p.OrderRef); ok {
		return v, nil
	}

	orderID, handle, err := s.resume(StateVerifying)
	if err != nil {
		return View{}, err
	}
	ctx = context.WithoutCancel(ctx)

	log := o.logger.With().
		Str("session_id", s.ID.String()).
		Str("order_id", orderID.String()).
		Str("order_number", handle.OrderNumber).
		Str("processor_order_ref", handle.ProcessorOrderRef).
		Str("payment_id", p.PaymentID).
		Logger()

	if p.OrderRef != handle.ProcessorOrderRef {
		log.Warn().Str("callback_order_ref", p.OrderRef).Msg("payment callback does not match the pending order")
		o.markFailed(ctx, s, orderID, handle, "callback order reference mismatch", log)
		return s.fail(model.ErrVerificationFailed), nil
	}

	verified, err := o.processor.VerifyPayment(ctx, processor.VerifyRequest{
		PaymentID: p.PaymentID,
		OrderID:   p.OrderRef,
		Signature: p.Signature,
	})
	if err != nil {
		log.Error().Err(err).Msg("payment verification call failed")
		o.markFailed(ctx, s, orderID, handle, "verification unavailable", log)
		return s.fail(model.ErrProcessorUnavailable), nil
	}
	if !verified {
		log.Warn().Msg("payment signature not verified")
		o.markFailed(ctx, s, orderID, handle, "signature not verified", log)
		return s.fail(model.ErrVerificationFailed), nil
	}

	processing := model.OrderStatusProcessing
	paid := model.PaymentStatusPaid
	updated, err := o.orders.UpdateByID(ctx, orderID, model.OrderUpdate{
		Status:              &processing,
		PaymentStatus:       &paid,
		ProcessorPaymentRef: &p.PaymentID,
		ProcessorSignature:  &p.Signature,
	})
	if err != nil || !updated {
		log.Error().Err(err).Bool("updated", updated).Msg("reconciliation gap: verified payment not recorded")
		gap := o.handleEvent(events.ReconciliationGap, orderID, handle, s.CustomerID)
		gap.Reason = "verified payment could not be recorded"
		o.publish(ctx, gap)
		return s.fail(model.ErrOrderPersistence), nil
	}

	o.carts.Clear(ctx, s.CustomerID)
	o.publish(ctx, o.handleEvent(events.OrderPaid, orderID, handle, s.CustomerID))

	log.Info().Msg("payment verified, order paid")
	return s.succeed(), nil
}

// DismissPayment handles the widget being closed without paying. The order
// stays PENDING; the open remote order is reported as a reconciliation gap.
func (o *Orchestrator) DismissPayment(ctx context.Context, s *Session) (View, error) {
	orderID, handle, err := s.resume(StateFailed)
	if err != nil {
		return View{}, err
	}

	o.logger.Warn().
		Str("session_id", s.ID.String()).
		Str("order_id", orderID.String()).
		Str("order_number", handle.OrderNumber).
		Str("processor_order_ref", handle.ProcessorOrderRef).
		Msg("reconciliation gap: payment dismissed, order left pending")

	gap := o.handleEvent(events.ReconciliationGap, orderID, handle, s.CustomerID)
	gap.Reason = "payment dismissed"
	o.publish(context.WithoutCancel(ctx), gap)

	return s.fail(model.ErrPaymentCancelled), nil
}

// FailPayment handles an explicit failure reported by the processor.
func (o *Orchestrator) FailPayment(ctx context.Context, s *Session, f PaymentFailure) (View, error) {
	orderID, handle, err := s.resume(StateFailed)
	if err != nil {
		return View{}, err
	}
	ctx = context.WithoutCancel(ctx)

	log := o.logger.With().
		Str("session_id", s.ID.String()).
		Str("order_id", orderID.String()).
		Str("processor_order_ref", handle.ProcessorOrderRef).
		Str("reason_code", f.ReasonCode).
		Logger()
	log.Warn().Str("reason", f.ReasonDescription).Msg("payment failed")

	reason := strings.TrimSpace(f.ReasonDescription)
	if f.ReasonCode != "" {
		reason = strings.TrimSpace(f.ReasonCode + ": " + reason)
	}
	if reason == "" {
		reason = "payment failed"
	}
	o.markFailed(ctx, s, orderID, handle, reason, log)

	return s.fail(model.ErrPaymentFailed), nil
}

// markFailed writes FAILED/FAILED unless the order is already PAID.
// Store errors are logged; the saga outcome is FAILED either way.
func (o *Orchestrator) markFailed(ctx context.Context, s *Session, orderID uuid.UUID, handle PaymentHandle, reason string, log zerolog.Logger) {
	failed := model.OrderStatusFailed
	paymentFailed := model.PaymentStatusFailed
	updated, err := o.orders.UpdateByID(ctx, orderID, model.OrderUpdate{
		Status:        &failed,
		PaymentStatus: &paymentFailed,
		FailureReason: &reason,
		UnlessPaid:    true,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to mark order failed")
	} else if !updated {
		log.Warn().Msg("order not marked failed: missing or already paid")
	}

	ev := o.handleEvent(events.OrderPaymentFailed, orderID, handle, s.CustomerID)
	ev.Reason = reason
	o.publish(ctx, ev)
}

func (o *Orchestrator) publish(ctx context.Context, ev events.Event) {
	if err := o.publisher.Publish(ctx, ev); err != nil {
		o.logger.Warn().Err(err).Str("event_type", string(ev.Type)).Msg("event not published")
	}
}

func orderEvent(t events.Type, order *model.Order) events.Event {
	ev := events.New(t)
	ev.OrderID = order.ID.String()
	ev.OrderNumber = order.OrderNumber
	ev.CustomerID = order.CustomerID
	ev.PaymentMethod = string(order.PaymentMethod)
	ev.Amount = order.TotalAmount.String()
	ev.Currency = order.Currency
	if order.ProcessorOrderRef != nil {
		ev.ProcessorOrderRef = *order.ProcessorOrderRef
	}
	return ev
}

func (o *Orchestrator) handleEvent(t events.Type, orderID uuid.UUID, h PaymentHandle, customerID string) events.Event {
	ev := events.New(t)
	ev.OrderID = orderID.String()
	ev.OrderNumber = h.OrderNumber
	ev.CustomerID = customerID
	ev.PaymentMethod = string(model.PaymentMethodGateway)
	ev.ProcessorOrderRef = h.ProcessorOrderRef
	ev.Currency = h.Currency
	ev.Amount = money.FromMinorUnits(h.Amount, o.pricer.Rules().CurrencyExponent).String()
	return ev
}

func prefill(a model.Address) Prefill {
	return Prefill{Name: a.FullName(), Email: a.Email, Phone: a.Phone}
}
