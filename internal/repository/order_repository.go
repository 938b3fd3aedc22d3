package repository

import (
	"context"
	"fmt"
	"time"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `id, user_id, address_id, COALESCE(order_number, ''), status, payment_status,
	COALESCE(payment_intent_id, ''), total, paid_at, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.AddressID,
		&o.OrderNumber,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentIntentID,
		&o.Total,
		&o.PaidAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// Create inserts a new order within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, address_id, status, payment_status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.AddressID,
		order.Status, order.PaymentStatus, order.Total,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateItems inserts order line snapshots within the provided transaction.
func (r *orderRepository) CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_id, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductID, item.Name, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// AppendStatusHistory appends one audit row within the transaction.
func (r *orderRepository) AppendStatusHistory(ctx context.Context, tx pgx.Tx, entry *model.StatusHistoryEntry) error {
	query := `
		INSERT INTO order_status_history (id, order_id, status, actor, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.Exec(ctx, query, entry.ID, entry.OrderID, entry.Status, entry.Actor, entry.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", entry.OrderID.String()).
			Str("status", string(entry.Status)).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &order); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// GetByIntentID retrieves an order by its payment intent id.
func (r *orderRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_intent_id = $1`

	var order model.Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, intentID), &order); err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("intent_id", intentID).Msg("no order for payment intent")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("intent_id", intentID).Msg("failed to query order by intent")
		return nil, fmt.Errorf("failed to query order by intent: %w", err)
	}

	items, err := r.getItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *orderRepository) getItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT order_id, product_id, name, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetStatusHistory retrieves an order's audit log in append order.
func (r *orderRepository) GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	query := `
		SELECT id, order_id, status, actor, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var entries []model.StatusHistoryEntry
	for rows.Next() {
		var e model.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Actor, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status history row")
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status history rows")
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return entries, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query user orders")
		return nil, fmt.Errorf("failed to query user orders: %w", err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// List retrieves orders matching the filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR payment_status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query,
		string(filter.Status), string(filter.PaymentStatus), filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

func (r *orderRepository) scanOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order's fulfilment status within the transaction.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, status)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for status update", orderID)
	}

	return nil
}

// UpdatePayment moves the order's payment status from the observed state to
// the new one within the transaction. The guard on the current status makes
// the update a compare-and-swap: a concurrent writer that already moved the
// status matches zero rows and gets false back.
func (r *orderRepository) UpdatePayment(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.PaymentStatus, paidAt *time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $3, paid_at = COALESCE($4, paid_at), updated_at = NOW()
		WHERE id = $1 AND payment_status = $2
	`

	tag, err := tx.Exec(ctx, query, orderID, from, to, paidAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("payment_status", string(to)).
			Msg("failed to update payment status")
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetPaymentIntent stores the gateway intent id and the lazily assigned order
// number, and resets the payment status for the new attempt.
func (r *orderRepository) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, orderNumber, intentID string) error {
	query := `
		UPDATE orders
		SET order_number = COALESCE(order_number, $2),
		    payment_intent_id = $3,
		    payment_status = 'pending',
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, orderID, orderNumber, intentID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("intent_id", intentID).
			Msg("failed to store payment intent")
		return fmt.Errorf("failed to store payment intent: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for payment intent", orderID)
	}

	return nil
}

// UpdateAddress changes the order's delivery address reference.
func (r *orderRepository) UpdateAddress(ctx context.Context, tx pgx.Tx, orderID, addressID uuid.UUID) error {
	query := `UPDATE orders SET address_id = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, orderID, addressID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order address")
		return fmt.Errorf("failed to update order address: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for address update", orderID)
	}

	return nil
}

// ReplaceItems swaps the order's line snapshots and total within the
// transaction. Only reachable through the admin correction flow.
func (r *orderRepository) ReplaceItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderItem, total float64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to delete order items")
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	if err := r.CreateItems(ctx, tx, items); err != nil {
		return err
	}

	query := `UPDATE orders SET total = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, query, orderID, total); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order total")
		return fmt.Errorf("failed to update order total: %w", err)
	}

	return nil
}

// Delete removes an order with its items and history.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// order_items and order_status_history cascade on delete
	query := `DELETE FROM orders WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found for delete", id)
	}

	r.logger.Info().Str("order_id", id.String()).Msg("order deleted")

	return nil
}

// Stats aggregates order counts per status and completed-payment revenue.
func (r *orderRepository) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats := &model.OrderStats{
		OrdersByStatus: make(map[model.OrderStatus]int),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order stats")
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status model.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order stats row")
			return nil, fmt.Errorf("failed to scan order stats: %w", err)
		}
		stats.OrdersByStatus[status] = count
		stats.TotalOrders += count
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order stats rows")
		return nil, fmt.Errorf("error iterating order stats: %w", err)
	}

	revenueQuery := `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE payment_status = 'completed'
	`
	if err := r.pool.QueryRow(ctx, revenueQuery).Scan(&stats.Revenue); err != nil {
		r.logger.Error().Err(err).Msg("failed to query revenue")
		return nil, fmt.Errorf("failed to query revenue: %w", err)
	}

	return stats, nil
}
