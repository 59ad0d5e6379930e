package handler

import (
	"net/http"

	"storefront/internal/checkout"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout session HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// sessionAction is an operation on an existing session of the customer.
type sessionAction func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error)

// withSession resolves the customer and session id, runs fn and writes the
// resulting view.
func (h *CheckoutHandler) withSession(w http.ResponseWriter, r *http.Request, fn sessionAction) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	view, err := fn(r, customer, id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	h.writeView(w, view)
}

// writeView writes a session view. A FAILED view carries the saga's error
// and is sent with the status of that error.
func (h *CheckoutHandler) writeView(w http.ResponseWriter, view checkout.View) {
	status := http.StatusOK
	if view.State == checkout.StateFailed && view.Error != nil {
		status = statusFor(view.Error.Code)
		h.logger.Info().
			Str("session_id", view.ID.String()).
			Str("code", view.Error.Code).
			Msg("checkout failed")
	}
	writeJSON(w, status, view)
}

// Create handles POST /api/checkout/sessions requests.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, h.service.Start(r.Context(), customer))
}

// Get handles GET /api/checkout/sessions/{id} requests.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.Get(customer, id)
	})
}

// Shipping handles POST /api/checkout/sessions/{id}/shipping requests.
func (h *CheckoutHandler) Shipping(w http.ResponseWriter, r *http.Request) {
	var sel checkout.ShippingSelection
	if !decodeJSON(w, r, &sel) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	h.withSession(w, r, func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.SelectShipping(r.Context(), customer, id, sel)
	})
}

// Back handles POST /api/checkout/sessions/{id}/back requests.
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(_ *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.Back(customer, id)
	})
}

// Submit handles POST /api/checkout/sessions/{id}/submit requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req checkout.SubmitRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}
	h.withSession(w, r, func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.Submit(r.Context(), customer, id, req)
	})
}

// PaymentSuccess handles POST /api/checkout/sessions/{id}/payment/success requests.
func (h *CheckoutHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	var p checkout.PaymentSuccess
	if !decodeJSON(w, r, &p) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if p.PaymentID == "" || p.OrderRef == "" || p.Signature == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "paymentId, orderRef and signature are required", h.logger)
		return
	}
	h.withSession(w, r, func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.CompletePayment(r.Context(), customer, id, p)
	})
}

// PaymentDismiss handles POST /api/checkout/sessions/{id}/payment/dismiss requests.
func (h *CheckoutHandler) PaymentDismiss(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.DismissPayment(r.Context(), customer, id)
	})
}

// PaymentFailure handles POST /api/checkout/sessions/{id}/payment/failure requests.
func (h *CheckoutHandler) PaymentFailure(w http.ResponseWriter, r *http.Request) {
	var f checkout.PaymentFailure
	if !decodeJSON(w, r, &f) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	h.withSession(w, r, func(r *http.Request, customer string, id uuid.UUID) (checkout.View, error) {
		return h.service.FailPayment(r.Context(), customer, id, f)
	})
}
