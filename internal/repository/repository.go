package repository

import (
	"context"
	"time"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access. The
// order core only reads products; the single write path is the review
// aggregate maintained by the review service.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns (nil, nil) when
	// the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// UpdateRating overwrites a product's review aggregate within the
	// provided transaction.
	UpdateRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID, avg float64, count int) error
}

// CartRepository defines the interface for cart data access. A cart is one
// row per user plus its item lines; the total is always derived, never stored.
type CartRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Ensure creates the user's cart row if it does not exist yet.
	Ensure(ctx context.Context, userID uuid.UUID) error

	// Exists reports whether the user has a cart.
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)

	// GetItems retrieves all cart lines for a user.
	GetItems(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// GetItemsForUpdate retrieves and row-locks all cart lines within the
	// provided transaction. Used to make cart consumption atomic with order
	// creation.
	GetItemsForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.CartItem, error)

	// UpsertItem inserts a cart line or increments the quantity of an
	// existing line. The price snapshot of an existing line is preserved.
	UpsertItem(ctx context.Context, userID uuid.UUID, item model.CartItem) error

	// SetItemQuantity overwrites the quantity of an existing line. Returns
	// false when no such line exists.
	SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error)

	// DeleteItem removes a cart line if present.
	DeleteItem(ctx context.Context, userID, productID uuid.UUID) error

	// Clear removes all cart lines for a user within the provided transaction.
	Clear(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItems inserts order line snapshots within the provided transaction.
	CreateItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// AppendStatusHistory appends one audit row. History rows are never
	// updated or deleted.
	AppendStatusHistory(ctx context.Context, tx pgx.Tx, entry *model.StatusHistoryEntry) error

	// GetByID retrieves an order with its items. Returns (nil, nil) when the
	// order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIntentID retrieves an order by its payment intent id.
	GetByIntentID(ctx context.Context, intentID string) (*model.Order, error)

	// GetStatusHistory retrieves an order's audit log in append order.
	GetStatusHistory(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// UpdateStatus sets the order's fulfilment status within the transaction.
	UpdateStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus) error

	// UpdatePayment moves the order's payment status from the observed state
	// to the new one, setting the optional paid-at timestamp. Returns false
	// without error when the stored state no longer matches from, so
	// concurrent writers cannot apply the same transition twice.
	UpdatePayment(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from, to model.PaymentStatus, paidAt *time.Time) (bool, error)

	// SetPaymentIntent stores the gateway intent id, the lazily assigned
	// order number, and resets payment status for a new attempt.
	SetPaymentIntent(ctx context.Context, orderID uuid.UUID, orderNumber, intentID string) error

	// UpdateAddress changes the order's delivery address reference.
	UpdateAddress(ctx context.Context, tx pgx.Tx, orderID, addressID uuid.UUID) error

	// ReplaceItems swaps the order's line snapshots and total within the
	// transaction. Admin correction flow only.
	ReplaceItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []model.OrderItem, total float64) error

	// Delete removes an order with its items and history.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats aggregates order counts per status and completed-payment revenue.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// AddressRepository defines the interface for delivery address data access.
type AddressRepository interface {
	// GetByID retrieves an address. Returns (nil, nil) when missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)

	// ListByUser retrieves all addresses of a user, default first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// Create saves a new address. When the address is marked default, all
	// other defaults of the user are cleared in the same transaction.
	Create(ctx context.Context, address *model.Address) error

	// SetDefault marks the given address as the user's default and clears
	// every other default in one transaction. Returns false when the address
	// does not exist or belongs to another user.
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (bool, error)

	// Delete removes a user's address. Returns false when the address does
	// not exist or belongs to another user.
	Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error)
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a review within the transaction. A duplicate
	// (product, order, user) triple yields model.ErrReviewExists.
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) error

	// Exists reports whether a review already exists for the triple.
	Exists(ctx context.Context, productID, orderID, userID uuid.UUID) (bool, error)

	// ListByProduct retrieves all reviews of a product, newest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error)

	// AggregateForProduct recomputes the review average and count of a
	// product by scanning all of its reviews, within the transaction.
	AggregateForProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (float64, int, error)
}
