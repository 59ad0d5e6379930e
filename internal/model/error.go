package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeAddressNotFound      = "ADDRESS_NOT_FOUND"
	ErrCodeAddressIncomplete    = "ADDRESS_INCOMPLETE"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeSessionNotFound      = "SESSION_NOT_FOUND"
	ErrCodeInvalidStep          = "INVALID_STEP"
	ErrCodeCheckoutInProgress   = "CHECKOUT_IN_PROGRESS"
	ErrCodeNoPaymentPending     = "NO_PAYMENT_PENDING"
	ErrCodeIdempotencyConsumed  = "IDEMPOTENCY_KEY_CONSUMED"
	ErrCodeProcessorUnavailable = "PROCESSOR_UNAVAILABLE"
	ErrCodePaymentCancelled     = "PAYMENT_CANCELLED"
	ErrCodePaymentFailed        = "PAYMENT_FAILED"
	ErrCodeVerificationFailed   = "VERIFICATION_FAILED"
	ErrCodeOrderPersistence     = "ORDER_PERSISTENCE_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrAddressNotFound      = NewDomainError(ErrCodeAddressNotFound, "Address not found")
	ErrAddressIncomplete    = NewDomainError(ErrCodeAddressIncomplete, "First name, email, phone and address line are required")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be GATEWAY or CASH_ON_DELIVERY")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrSessionNotFound      = NewDomainError(ErrCodeSessionNotFound, "Checkout session not found")
	ErrInvalidStep          = NewDomainError(ErrCodeInvalidStep, "Operation is not allowed in the current checkout step")
	ErrCheckoutInProgress   = NewDomainError(ErrCodeCheckoutInProgress, "A checkout is already in progress for this session")
	ErrNoPaymentPending     = NewDomainError(ErrCodeNoPaymentPending, "No payment is awaiting completion for this session")
	ErrIdempotencyConsumed  = NewDomainError(ErrCodeIdempotencyConsumed, "Idempotency key belongs to a failed order, use a new key")
)

// Saga failure reasons surfaced to the user. One message per failure kind.
var (
	ErrProcessorUnavailable = NewDomainError(ErrCodeProcessorUnavailable, "Could not reach the payment processor, please try again")
	ErrPaymentCancelled     = NewDomainError(ErrCodePaymentCancelled, "Payment was cancelled")
	ErrPaymentFailed        = NewDomainError(ErrCodePaymentFailed, "Payment failed")
	ErrVerificationFailed   = NewDomainError(ErrCodeVerificationFailed, "Payment could not be verified")
	ErrOrderPersistence     = NewDomainError(ErrCodeOrderPersistence, "Could not place the order, please try again")
)
