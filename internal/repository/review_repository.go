package repository

import (
	"context"
	"errors"
	"fmt"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a review within the transaction. The UNIQUE
// (product_id, order_id, user_id) constraint backs the one-review-per-triple
// invariant even under concurrent submissions.
func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, order_id, user_id, rating, comment, image_urls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		review.ID, review.ProductID, review.OrderID, review.UserID,
		review.Rating, review.Comment, review.ImageURLs, review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().
				Str("product_id", review.ProductID.String()).
				Str("order_id", review.OrderID.String()).
				Msg("duplicate review rejected")
			return model.ErrReviewExists
		}
		r.logger.Error().Err(err).Str("review_id", review.ID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}

	r.logger.Debug().
		Str("review_id", review.ID.String()).
		Str("product_id", review.ProductID.String()).
		Msg("review created")

	return nil
}

// Exists reports whether a review already exists for the triple.
func (r *reviewRepository) Exists(ctx context.Context, productID, orderID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reviews
			WHERE product_id = $1 AND order_id = $2 AND user_id = $3
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, productID, orderID, userID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to check review existence")
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}

	return exists, nil
}

// ListByProduct retrieves all reviews of a product, newest first.
func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	query := `
		SELECT id, product_id, order_id, user_id, rating, comment, image_urls, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(&rv.ID, &rv.ProductID, &rv.OrderID, &rv.UserID,
			&rv.Rating, &rv.Comment, &rv.ImageURLs, &rv.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// AggregateForProduct recomputes the review average and count of a product by
// scanning all of its reviews. A full recompute is deliberately preferred
// over an incremental running average at this write volume.
func (r *reviewRepository) AggregateForProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1
	`

	var avg float64
	var count int
	if err := tx.QueryRow(ctx, query, productID).Scan(&avg, &count); err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to aggregate reviews")
		return 0, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	return avg, count, nil
}
