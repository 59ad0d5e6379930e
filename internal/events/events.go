// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderCreated       Type = "order.created"
	OrderPaid          Type = "order.paid"
	OrderPaymentFailed Type = "order.payment_failed"
	// ReconciliationGap reports a remote order that may never be settled
	// locally: a dismissed payment or a remote order without a local row.
	ReconciliationGap Type = "checkout.reconciliation_gap"
)

// Event is the JSON payload written to the topic.
type Event struct {
	ID                string    `json:"id"`
	Type              Type      `json:"type"`
	OccurredAt        time.Time `json:"occurredAt"`
	OrderID           string    `json:"orderId,omitempty"`
	OrderNumber       string    `json:"orderNumber,omitempty"`
	CustomerID        string    `json:"customerId,omitempty"`
	PaymentMethod     string    `json:"paymentMethod,omitempty"`
	ProcessorOrderRef string    `json:"processorOrderRef,omitempty"`
	Amount            string    `json:"amount,omitempty"`
	Currency          string    `json:"currency,omitempty"`
	Reason            string    `json:"reason,omitempty"`
}

// New returns an event of type t with a fresh id and timestamp.
func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

// key partitions events so that one order's events stay ordered.
func (e Event) key() string {
	switch {
	case e.OrderNumber != "":
		return e.OrderNumber
	case e.ProcessorOrderRef != "":
		return e.ProcessorOrderRef
	default:
		return e.ID
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event. Used when Kafka is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
