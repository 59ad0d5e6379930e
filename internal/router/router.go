package router

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Cart     *handler.CartHandler
	Address  *handler.AddressHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey, jwtSecret string, db Pinger, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				logger.Warn().Err(err).Msg("health check: database unreachable")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Cart
	mux.HandleFunc("GET /api/cart", h.Cart.Get)
	mux.HandleFunc("DELETE /api/cart", h.Cart.Clear)
	mux.HandleFunc("POST /api/cart/items", h.Cart.AddItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.Cart.RemoveItem)
	mux.HandleFunc("POST /api/cart/items/{id}/increment", h.Cart.Increment)
	mux.HandleFunc("POST /api/cart/items/{id}/decrement", h.Cart.Decrement)

	// Address book
	mux.HandleFunc("GET /api/addresses", h.Address.List)
	mux.HandleFunc("POST /api/addresses", h.Address.Create)

	// Checkout sessions
	mux.HandleFunc("POST /api/checkout/sessions", h.Checkout.Create)
	mux.HandleFunc("GET /api/checkout/sessions/{id}", h.Checkout.Get)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/shipping", h.Checkout.Shipping)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/back", h.Checkout.Back)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/submit", h.Checkout.Submit)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/payment/success", h.Checkout.PaymentSuccess)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/payment/dismiss", h.Checkout.PaymentDismiss)
	mux.HandleFunc("POST /api/checkout/sessions/{id}/payment/failure", h.Checkout.PaymentFailure)

	// Order confirmation
	mux.HandleFunc("GET /api/orders/{reference}", h.Order.Get)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth -> CustomerAuth
	var handler http.Handler = mux
	handler = middleware.CustomerAuth(jwtSecret, logger)(handler)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
