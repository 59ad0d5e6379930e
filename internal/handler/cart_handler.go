package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItemRequest is the body of POST /api/cart/items.
type AddItemRequest struct {
	ProductID string `json:"productId"`
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Get(r.Context(), customer))
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	view, err := h.service.AddProduct(r.Context(), customer, req.ProductID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Remove(r.Context(), customer, r.PathValue("id")))
}

// Increment handles POST /api/cart/items/{id}/increment requests.
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Increment(r.Context(), customer, r.PathValue("id")))
}

// Decrement handles POST /api/cart/items/{id}/decrement requests.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Decrement(r.Context(), customer, r.PathValue("id")))
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	customer, ok := customerID(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Clear(r.Context(), customer))
}
