package repository

import (
	"context"
	"fmt"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Ensure creates the user's cart row if it does not exist yet.
func (r *cartRepository) Ensure(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO carts (user_id, updated_at)
		VALUES ($1, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure cart")
		return fmt.Errorf("failed to ensure cart: %w", err)
	}

	return nil
}

// Exists reports whether the user has a cart.
func (r *cartRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM carts WHERE user_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to check cart existence")
		return false, fmt.Errorf("failed to check cart existence: %w", err)
	}

	return exists, nil
}

const cartItemQuery = `
	SELECT product_id, name, quantity, unit_price
	FROM cart_items
	WHERE user_id = $1
	ORDER BY added_at
`

// GetItems retrieves all cart lines for a user.
func (r *cartRepository) GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := r.pool.Query(ctx, cartItemQuery, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows)
}

// GetItemsForUpdate retrieves and row-locks all cart lines within the
// transaction. A concurrent order creation for the same cart blocks here
// until the first transaction commits, after which it sees an empty cart.
func (r *cartRepository) GetItemsForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error) {
	rows, err := tx.Query(ctx, cartItemQuery+` FOR UPDATE`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock cart items")
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}
	defer rows.Close()

	return scanCartItems(rows)
}

func scanCartItems(rows pgx.Rows) ([]model.CartItem, error) {
	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// UpsertItem inserts a cart line or increments the quantity of an existing
// line. The unit price snapshot of an existing line is kept as is.
func (r *cartRepository) UpsertItem(ctx context.Context, userID uuid.UUID, item model.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, name, quantity, unit_price, added_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.pool.Exec(ctx, query, userID, item.ProductID, item.Name, item.Quantity, item.UnitPrice)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Str("product_id", item.ProductID.String()).
		Int("quantity", item.Quantity).
		Msg("cart item upserted")

	return nil
}

// SetItemQuantity overwrites the quantity of an existing line.
func (r *cartRepository) SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3
		WHERE user_id = $1 AND product_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to update cart item quantity")
		return false, fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteItem removes a cart line if present. Deleting an absent line is not
// an error.
func (r *cartRepository) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	_, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	return nil
}

// Clear removes all cart lines for a user within the transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	_, err := tx.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("user_id", userID.String()).Msg("cart cleared")

	return nil
}
