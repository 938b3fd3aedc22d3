package service

import (
	"context"

	"foodcourt/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// CartService defines operations on a user's cart. Every mutation returns
// the cart with its total recomputed from the current lines.
type CartService interface {
	// Get returns the user's cart, creating an empty one on first use.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// AddItem adds a product to the cart, or increments the quantity of an
	// existing line. The product's current price is snapshotted on first add.
	AddItem(ctx context.Context, userID uuid.UUID, req model.AddItemRequest) (*model.Cart, error)

	// UpdateItem overwrites a line's quantity; zero or less removes the line.
	UpdateItem(ctx context.Context, userID uuid.UUID, req model.UpdateItemRequest) (*model.Cart, error)

	// RemoveItem removes a line. Removing an absent line is a no-op.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.Cart, error)
}

// OrderService defines operations on the order aggregate.
type OrderService interface {
	// Create snapshots the user's cart into a new pending order and clears
	// the cart, atomically.
	Create(ctx context.Context, user model.User, addressID uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order. Non-admin callers only see their own
	// orders; a foreign order is reported as not found.
	GetByID(ctx context.Context, user model.User, orderID uuid.UUID) (*model.Order, error)

	// ListByUser retrieves the user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error)

	// GetStatusHistory retrieves an order's audit log.
	GetStatusHistory(ctx context.Context, user model.User, orderID uuid.UUID) ([]model.StatusHistoryEntry, error)

	// Delete removes an order. Only pending orders can be deleted.
	Delete(ctx context.Context, user model.User, orderID uuid.UUID) error

	// UpdateStatus applies a fulfilment transition, appending one history
	// entry. Illegal transitions are rejected.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actor string) (*model.Order, error)

	// UpdatePaymentStatus applies a payment-axis transition outside the
	// webhook flow, for manual reconciliation and refunds. Admin surface.
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, actor string) (*model.Order, error)

	// List retrieves orders matching the filter. Admin surface.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// Edit applies an allow-listed admin correction. Edited items are
	// repriced from current product prices.
	Edit(ctx context.Context, orderID uuid.UUID, edit model.AdminOrderEdit, actor string) (*model.Order, error)

	// Stats aggregates order counts and revenue. Admin surface.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// PaymentService drives an order through payment via the external gateway.
type PaymentService interface {
	// CreateSession creates a gateway payment intent for the order and
	// returns the client handle to complete it.
	CreateSession(ctx context.Context, user model.User, orderID uuid.UUID) (*model.PaymentSession, error)

	// HandleWebhook verifies and applies a gateway webhook event.
	// Redelivered events are applied idempotently.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// ReviewService defines review submission and listing.
type ReviewService interface {
	// Create writes one review per entry for products of a delivered order
	// and recomputes each product's rating aggregate.
	Create(ctx context.Context, user model.User, req model.CreateReviewRequest) ([]model.Review, error)

	// ListByProduct retrieves all reviews of a product.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
}

// AddressService defines operations on a user's delivery addresses.
type AddressService interface {
	// List retrieves the user's addresses, default first.
	List(ctx context.Context, userID uuid.UUID) ([]model.Address, error)

	// Create saves a new address, clearing other defaults when the new one
	// is marked default.
	Create(ctx context.Context, userID uuid.UUID, req model.CreateAddressRequest) (*model.Address, error)

	// SetDefault makes the address the user's only default.
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error

	// Delete removes the user's address.
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}
