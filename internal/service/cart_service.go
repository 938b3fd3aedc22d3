package service

import (
	"context"
	"fmt"

	"foodcourt/internal/model"
	"foodcourt/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the user's cart, creating an empty one on first use.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	if err := s.cartRepo.Ensure(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.load(ctx, userID)
}

// AddItem adds a product to the cart, snapshotting its current price, or
// increments the quantity of an existing line.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req model.AddItemRequest) (*model.Cart, error) {
	if req.Quantity < 1 {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Int("quantity", req.Quantity).
			Msg("invalid quantity for add to cart")
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID.String()).Msg("failed to look up product")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	if !product.IsAvailable {
		s.logger.Debug().Str("product_id", product.ID.String()).Msg("rejected unavailable product")
		return nil, model.ErrProductUnavailable
	}

	if err := s.cartRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	item := model.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
	}
	if err := s.cartRepo.UpsertItem(ctx, userID, item); err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", product.ID.String()).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return s.load(ctx, userID)
}

// UpdateItem overwrites a line's quantity; zero or less removes the line.
// Updating a line that was never in the cart is reported as not found.
func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, req model.UpdateItemRequest) (*model.Cart, error) {
	exists, err := s.cartRepo.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if !exists {
		return nil, model.ErrCartNotFound
	}

	if req.Quantity <= 0 {
		// A zero or negative quantity is a removal, but the line must exist
		// for the update to be meaningful.
		items, err := s.cartRepo.GetItems(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to update cart: %w", err)
		}
		if !containsProduct(items, req.ProductID) {
			return nil, model.ErrCartItemNotFound
		}
		if err := s.cartRepo.DeleteItem(ctx, userID, req.ProductID); err != nil {
			return nil, fmt.Errorf("failed to update cart: %w", err)
		}
		return s.load(ctx, userID)
	}

	updated, err := s.cartRepo.SetItemQuantity(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if !updated {
		return nil, model.ErrCartItemNotFound
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", req.ProductID.String()).
		Int("quantity", req.Quantity).
		Msg("cart item updated")

	return s.load(ctx, userID)
}

// RemoveItem removes a line. Removal is idempotent: removing an absent line
// succeeds without effect.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.Cart, error) {
	if err := s.cartRepo.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	if err := s.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}

	return s.load(ctx, userID)
}

// load reads the cart lines and recomputes the derived total.
func (s *cartService) load(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart items")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &model.Cart{
		UserID: userID,
		Items:  items,
	}
	cart.ComputeTotal()

	return cart, nil
}

func containsProduct(items []model.CartItem, productID uuid.UUID) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
