package service

import (
	"context"
	"time"

	"storefront/internal/checkout"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService over the session registry, the
// step controller and the order saga.
type checkoutService struct {
	sessions     *checkout.Registry
	steps        *checkout.Controller
	orchestrator *checkout.Orchestrator
	logger       zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	sessions *checkout.Registry,
	steps *checkout.Controller,
	orchestrator *checkout.Orchestrator,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		sessions:     sessions,
		steps:        steps,
		orchestrator: orchestrator,
		logger:       logger.With().Str("service", "checkout-sessions").Logger(),
	}
}

func (s *checkoutService) Start(_ context.Context, customerID string) checkout.View {
	session := s.sessions.Create(customerID)

	s.logger.Debug().
		Str("session_id", session.ID.String()).
		Str("customer_id", customerID).
		Msg("checkout session started")

	return session.View()
}

func (s *checkoutService) Get(customerID string, sessionID uuid.UUID) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return session.View(), nil
}

func (s *checkoutService) SelectShipping(ctx context.Context, customerID string, sessionID uuid.UUID, sel checkout.ShippingSelection) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.steps.SelectShipping(ctx, session, sel)
}

func (s *checkoutService) Back(customerID string, sessionID uuid.UUID) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.steps.Back(session)
}

func (s *checkoutService) Submit(ctx context.Context, customerID string, sessionID uuid.UUID, req checkout.SubmitRequest) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.orchestrator.Submit(ctx, session, req)
}

func (s *checkoutService) CompletePayment(ctx context.Context, customerID string, sessionID uuid.UUID, p checkout.PaymentSuccess) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.orchestrator.CompletePayment(ctx, session, p)
}

func (s *checkoutService) DismissPayment(ctx context.Context, customerID string, sessionID uuid.UUID) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.orchestrator.DismissPayment(ctx, session)
}

func (s *checkoutService) FailPayment(ctx context.Context, customerID string, sessionID uuid.UUID, f checkout.PaymentFailure) (checkout.View, error) {
	session, err := s.sessions.Get(customerID, sessionID)
	if err != nil {
		return checkout.View{}, err
	}
	return s.orchestrator.FailPayment(ctx, session, f)
}

func (s *checkoutService) PruneIdle(maxIdle time.Duration) int {
	removed := s.sessions.Prune(time.Now().UTC().Add(-maxIdle))
	if removed > 0 {
		s.logger.Info().
			Int("removed", removed).
			Int("live", s.sessions.Len()).
			Msg("pruned idle checkout sessions")
	}
	return removed
}
