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

// addressService implements AddressService.
type addressService struct {
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

func (s *addressService) List(ctx context.Context, customerID string) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// Create validates the required fields before anything is written.
func (s *addressService) Create(ctx context.Context, customerID string, fields model.AddressFields) (*model.Address, error) {
	if !fields.Complete() {
		s.logger.Debug().Str("customer_id", customerID).Msg("incomplete address rejected")
		return nil, model.ErrAddressIncomplete
	}

	address := &model.Address{
		ID:         uuid.New(),
		CustomerID: customerID,
		FirstName:  strings.TrimSpace(fields.FirstName),
		LastName:   strings.TrimSpace(fields.LastName),
		Email:      strings.TrimSpace(fields.Email),
		Phone:      strings.TrimSpace(fields.Phone),
		Line1:      strings.TrimSpace(fields.Line1),
		City:       strings.TrimSpace(fields.City),
		State:      strings.TrimSpace(fields.State),
		Zip:        strings.TrimSpace(fields.Zip),
		Country:    strings.TrimSpace(fields.Country),
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID).Msg("failed to create address")
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	s.logger.Info().
		Str("customer_id", customerID).
		Str("address_id", address.ID.String()).
		Bool("is_default", address.IsDefault).
		Msg("address created")

	return address, nil
}

func (s *addressService) Get(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, customerID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to get address")
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, model.ErrAddressNotFound
	}
	return address, nil
}
