package service

import (
	"context"
	"fmt"
	"time"

	"foodcourt/internal/model"
	"foodcourt/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

// Create writes one review per entry and recomputes each reviewed product's
// rating aggregate in the same transaction. Reviews are only accepted from
// the order's owner, for delivered orders, and for products that were part
// of the order; each (product, order) pair can be reviewed once.
func (s *reviewService) Create(ctx context.Context, user model.User, req model.CreateReviewRequest) ([]model.Review, error) {
	if len(req.Entries) == 0 {
		return nil, model.Validation("At least one review entry is required")
	}
	for _, entry := range req.Entries {
		if entry.Rating < 1 || entry.Rating > 5 {
			return nil, model.ErrInvalidRating
		}
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if order == nil || order.UserID != user.ID || order.Status != model.OrderStatusDelivered {
		return nil, model.ErrOrderNotDelivered
	}

	ordered := make(map[uuid.UUID]bool, len(order.Items))
	for _, item := range order.Items {
		ordered[item.ProductID] = true
	}
	for _, entry := range req.Entries {
		if !ordered[entry.ProductID] {
			return nil, model.ErrProductNotInOrder
		}
		exists, err := s.reviewRepo.Exists(ctx, entry.ProductID, req.OrderID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
		if exists {
			return nil, model.ErrReviewExists
		}
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	reviews := make([]model.Review, 0, len(req.Entries))
	for _, entry := range req.Entries {
		review := model.Review{
			ID:        uuid.New(),
			ProductID: entry.ProductID,
			OrderID:   req.OrderID,
			UserID:    user.ID,
			Rating:    entry.Rating,
			Comment:   entry.Comment,
			ImageURLs: entry.ImageURLs,
			CreatedAt: time.Now(),
		}
		// The unique constraint backstops the pre-check against a concurrent
		// submission of the same review.
		if err = s.reviewRepo.Create(ctx, tx, &review); err != nil {
			if err == model.ErrReviewExists {
				return nil, err
			}
			return nil, fmt.Errorf("failed to create review: %w", err)
		}

		var avg float64
		var count int
		avg, count, err = s.reviewRepo.AggregateForProduct(ctx, tx, entry.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
		if err = s.productRepo.UpdateRating(ctx, tx, entry.ProductID, avg, count); err != nil {
			return nil, fmt.Errorf("failed to create review: %w", err)
		}

		reviews = append(reviews, review)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info().
		Str("order_id", req.OrderID.String()).
		Str("user_id", user.ID.String()).
		Int("reviews", len(reviews)).
		Msg("reviews created")

	return reviews, nil
}

// ListByProduct retrieves all reviews of a product, newest first.
func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
