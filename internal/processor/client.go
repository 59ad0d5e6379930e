// Package processor is the HTTP client for the external payment processor.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable marks transient failures: network errors, 5xx and 429
// responses, and calls rejected by the open circuit breaker. Callers may retry.
var ErrUnavailable = errors.New("payment processor unavailable")

// APIError is a non-retryable error response from the processor.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("processor api %d: %s (%s)", e.Status, e.Description, e.Code)
}

// CreateOrderRequest asks the processor to open an order for collection.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// RemoteOrder is the processor's view of an order.
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// VerifyRequest carries the values returned by the collection widget.
type VerifyRequest struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client talks to the processor's order and verification endpoints.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a processor client from configuration.
func New(cfg config.ProcessorConfig, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "processor").Logger(),
	}
	for _, o := range opts {
		o(c)
	}

	failures := uint32(cfg.BreakerFailures)
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "payment-processor",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return c
}

// KeyID returns the public key the collection widget is initialised with.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder opens a remote order for amount minor units.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RemoteOrder, error) {
	var out RemoteOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders", req, &out); err != nil {
		return nil, fmt.Errorf("failed to create remote order: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("failed to create remote order: %w: response has no order id", ErrUnavailable)
	}

	c.logger.Info().
		Str("processor_order_ref", out.ID).
		Str("receipt", req.Receipt).
		Int64("amount", req.Amount).
		Msg("remote order created")

	return &out, nil
}

// VerifyPayment asks the processor whether the signature authenticates the
// payment for the order.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyRequest) (bool, error) {
	var out verifyResponse
	if err := c.do(ctx, http.MethodPost, "/v1/payments/verify", req, &out); err != nil {
		return false, fmt.Errorf("failed to verify payment: %w", err)
	}

	c.logger.Info().
		Str("processor_order_ref", req.OrderID).
		Str("payment_id", req.PaymentID).
		Bool("verified", out.Verified).
		Msg("payment verification completed")

	return out.Verified, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.keySecret)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("processor request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("processor request completed")

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Description: http.StatusText(resp.StatusCode)}
		var er errorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error.Code != "" {
			apiErr.Code = er.Error.Code
			apiErr.Description = er.Error.Description
		}
		return nil, apiErr
	}

	return respBody, nil
}
