package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodGateway        PaymentMethod = "GATEWAY"
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodGateway || m == PaymentMethodCashOnDelivery
}

// OrderStatus is the fulfilment status of an order.
// Shipped, delivered and returned are written by the admin surface only.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusReturned   OrderStatus = "RETURNED"
	OrderStatusFailed     OrderStatus = "FAILED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// PaymentStatus is the money-collection status of an order.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Order represents a customer order. Items, ShippingAddress and the money
// fields are snapshots taken at creation and never re-derived.
type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderNumber         string          `json:"orderNumber" db:"order_number"`
	CustomerID          string          `json:"customerId" db:"customer_id"`
	IdempotencyKey      *string         `json:"-" db:"idempotency_key"`
	Items               []OrderItem     `json:"items"`
	ShippingAddress     Address         `json:"shippingAddress" db:"shipping_address"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax                 decimal.Decimal `json:"tax" db:"tax"`
	ShippingFee         decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	TotalAmount         decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Currency            string          `json:"currency" db:"currency"`
	PaymentMethod       PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	Status              OrderStatus     `json:"status" db:"status"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	ProcessorOrderRef   *string         `json:"processorOrderRef,omitempty" db:"processor_order_ref"`
	ProcessorPaymentRef *string         `json:"processorPaymentRef,omitempty" db:"processor_payment_ref"`
	ProcessorSignature  *string         `json:"-" db:"processor_signature"`
	FailureReason       *string         `json:"failureReason,omitempty" db:"failure_reason"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item snapshot in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	ImageRef  *string         `json:"imageRef,omitempty" db:"image_ref"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// OrderUpdate is a partial overwrite of an order row. Nil fields are left
// untouched.
type OrderUpdate struct {
	Status              *OrderStatus
	PaymentStatus       *PaymentStatus
	ProcessorPaymentRef *string
	ProcessorSignature  *string
	FailureReason       *string

	// UnlessPaid skips the write when the row is already PAID, so a late
	// failure report cannot clobber a verified payment.
	UnlessPaid bool
}

// Product is the read-only catalogue entry used to price cart additions.
type Product struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	ImageRef  *string         `json:"imageRef,omitempty" db:"image_ref"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}
