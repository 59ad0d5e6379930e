package checkout

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Step is the customer-facing progress of a checkout.
type Step string

const (
	StepShipping     Step = "SHIPPING"
	StepPayment      Step = "PAYMENT"
	StepConfirmation Step = "CONFIRMATION"
)

// AddressBook resolves and creates customer addresses.
type AddressBook interface {
	Get(ctx context.Context, customerID string, id uuid.UUID) (*model.Address, error)
	Create(ctx context.Context, customerID string, fields model.AddressFields) (*model.Address, error)
}

// ShippingSelection picks an existing address or supplies a new one.
// AddressID wins when both are set.
type ShippingSelection struct {
	AddressID *uuid.UUID           `json:"addressId,omitempty"`
	Address   *model.AddressFields `json:"address,omitempty"`
}

// Controller gates movement between checkout steps. It owns no business
// data; every guard is a predicate over the address book or the session's
// orchestration state.
type Controller struct {
	addresses AddressBook
	logger    zerolog.Logger
}

// NewController creates a step controller.
func NewController(addresses AddressBook, logger zerolog.Logger) *Controller {
	return &Controller{
		addresses: addresses,
		logger:    logger.With().Str("component", "checkout-steps").Logger(),
	}
}

// SelectShipping moves SHIPPING to PAYMENT once sel resolves to a usable
// address. On any error the session stays on SHIPPING. The address cannot
// change while an orchestration is in flight.
func (c *Controller) SelectShipping(ctx context.Context, s *Session, sel ShippingSelection) (View, error) {
	current := s.View()
	if current.Step != StepShipping {
		return View{}, model.ErrInvalidStep
	}
	if current.Busy {
		return View{}, model.ErrCheckoutInProgress
	}

	address, err := c.resolveAddress(ctx, s.CustomerID, sel)
	if err != nil {
		c.logger.Debug().Err(err).Str("session_id", s.ID.String()).Msg("shipping selection rejected")
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepShipping {
		return View{}, model.ErrInvalidStep
	}
	if s.busy {
		return View{}, model.ErrCheckoutInProgress
	}
	s.address = address
	s.step = StepPayment
	s.touch()

	c.logger.Debug().
		Str("session_id", s.ID.String()).
		Str("address_id", address.ID.String()).
		Msg("advanced to payment")

	return s.viewLocked(), nil
}

func (c *Controller) resolveAddress(ctx context.Context, customerID string, sel ShippingSelection) (*model.Address, error) {
	switch {
	case sel.AddressID != nil:
		return c.addresses.Get(ctx, customerID, *sel.AddressID)
	case sel.Address != nil:
		if !sel.Address.Complete() {
			return nil, model.ErrAddressIncomplete
		}
		return c.addresses.Create(ctx, customerID, *sel.Address)
	default:
		return nil, model.ErrAddressIncomplete
	}
}

// Back returns from PAYMENT to SHIPPING. Orchestration state is left as is.
func (c *Controller) Back(s *Session) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepConfirmation:
		return View{}, model.ErrInvalidStep
	case StepPayment:
		s.step = StepShipping
		s.touch()
	}
	return s.viewLocked(), nil
}

// advanceOnSuccess applies the PAYMENT to CONFIRMATION guard. Callers hold s.mu.
func (s *Session) advanceOnSuccess() {
	if s.state == StateSucceeded {
		s.step = StepConfirmation
	}
}
