package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	productRepo repository.ProductRepository
	carts       *cart.Manager
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(productRepo repository.ProductRepository, carts *cart.Manager, logger zerolog.Logger) CartService {
	return &cartService{
		productRepo: productRepo,
		carts:       carts,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, customerID string) cart.View {
	return s.carts.Get(ctx, customerID)
}

// AddProduct adds one unit of the product. Name, price and image come from
// the catalog, never from the client.
func (s *cartService) AddProduct(ctx context.Context, customerID, productID string) (cart.View, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		s.logger.Warn().Msg("product ID is empty")
		return cart.View{}, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to get product")
		return cart.View{}, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", productID).Msg("product not found")
		return cart.View{}, model.ErrProductNotFound
	}

	view := s.carts.Add(ctx, customerID, cart.Item{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		ImageRef:  product.ImageRef,
	})

	s.logger.Debug().
		Str("customer_id", customerID).
		Str("product_id", product.ID).
		Int("total_items", view.TotalItems).
		Msg("product added to cart")

	return view, nil
}

func (s *cartService) Remove(ctx context.Context, customerID, itemID string) cart.View {
	return s.carts.Remove(ctx, customerID, itemID)
}

func (s *cartService) Increment(ctx context.Context, customerID, itemID string) cart.View {
	return s.carts.Increment(ctx, customerID, itemID)
}

func (s *cartService) Decrement(ctx context.Context, customerID, itemID string) cart.View {
	return s.carts.Decrement(ctx, customerID, itemID)
}

func (s *cartService) Clear(ctx context.Context, customerID string) cart.View {
	s.carts.Clear(ctx, customerID)
	return s.carts.Get(ctx, customerID)
}
