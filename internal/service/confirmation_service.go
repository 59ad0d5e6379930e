package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// confirmationService implements ConfirmationService.
type confirmationService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewConfirmationService creates a new confirmation service.
func NewConfirmationService(orderRepo repository.OrderRepository, logger zerolog.Logger) ConfirmationService {
	return &confirmationService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "confirmation").Logger(),
	}
}

type orderLookup struct {
	by   string
	find func(ctx context.Context, ref string) (*model.Order, error)
}

// Resolve returns the stored snapshot as is. Orders of other customers are
// reported as not found.
func (s *confirmationService) Resolve(ctx context.Context, customerID, reference string) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, model.ErrOrderNotFound
	}

	lookups := make([]orderLookup, 0, 3)
	if id, err := uuid.Parse(reference); err == nil {
		lookups = append(lookups, orderLookup{"id", func(ctx context.Context, _ string) (*model.Order, error) {
			return s.orderRepo.GetByID(ctx, id)
		}})
	}
	lookups = append(lookups,
		orderLookup{"order_number", s.orderRepo.GetByOrderNumber},
		orderLookup{"processor_order_ref", s.orderRepo.GetByProcessorOrderRef},
	)

	for _, l := range lookups {
		order, err := l.find(ctx, reference)
		if err != nil {
			s.logger.Error().Err(err).Str("by", l.by).Str("reference", reference).Msg("failed to resolve order")
			return nil, fmt.Errorf("failed to resolve order: %w", err)
		}
		if order == nil {
			continue
		}
		if order.CustomerID != customerID {
			s.logger.Warn().
				Str("by", l.by).
				Str("order_id", order.ID.String()).
				Str("customer_id", customerID).
				Msg("order belongs to another customer")
			return nil, model.ErrOrderNotFound
		}

		s.logger.Debug().
			Str("by", l.by).
			Str("order_id", order.ID.String()).
			Msg("order resolved")
		return order, nil
	}

	return nil, model.ErrOrderNotFound
}
