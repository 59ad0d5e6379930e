package handler

import (
	"net/http"

	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler serves the order confirmation page.
type OrderHandler struct {
	service service.ConfirmationService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.ConfirmationService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Get handles GET /api/orders/{reference} requests. The reference is an
// order id, an order number or a processor order reference.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.Resolve(r.Context(), customer, r.PathValue("reference"))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
