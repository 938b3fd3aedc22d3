package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the set of allowed fulfilment transitions. Cancellation
// is reachable from every non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: nil,
	OrderStatusCancelled: nil,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks the payment axis of an order, orthogonal to
// fulfilment status. A failed payment may be retried (failed -> pending);
// refunded is the only state reachable after completion.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:    {PaymentStatusPending},
	PaymentStatusCompleted: {PaymentStatusRefunded},
	PaymentStatusRefunded:  nil,
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable snapshot of a consumed cart, tracked through
// fulfilment and payment states. Items and total never change after creation
// except through the admin correction flow.
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	UserID          uuid.UUID     `json:"userId" db:"user_id"`
	AddressID       uuid.UUID     `json:"addressId" db:"address_id"`
	OrderNumber     string        `json:"orderNumber,omitempty" db:"order_number"`
	Status          OrderStatus   `json:"status" db:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentIntentID string        `json:"-" db:"payment_intent_id"`
	Total           float64       `json:"total" db:"total"`
	Items           []OrderItem   `json:"items,omitempty"`
	PaidAt          *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line item snapshotted from the cart at creation time.
type OrderItem struct {
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
}

// StatusHistoryEntry is one row of an order's append-only audit log. Every
// status change appends exactly one entry; entries are never rewritten.
type StatusHistoryEntry struct {
	ID        uuid.UUID   `json:"-" db:"id"`
	OrderID   uuid.UUID   `json:"-" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	Actor     string      `json:"actor" db:"actor"`
	CreatedAt time.Time   `json:"timestamp" db:"created_at"`
}

// CreateOrderRequest is the payload for creating an order from the cart.
type CreateOrderRequest struct {
	AddressID uuid.UUID `json:"addressId"`
}

// UpdateStatusRequest is the payload for an admin status change.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// UpdatePaymentStatusRequest is the payload for an admin payment-status
// change, covering manual reconciliation and refunds.
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// AdminOrderItemEdit is one corrected line in an admin order edit.
type AdminOrderItemEdit struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// AdminOrderEdit is the allow-listed set of fields an admin may correct on
// an order. Nil fields are left untouched. When Items is set, unit prices
// are re-resolved from current product prices and the total recomputed.
type AdminOrderEdit struct {
	Status    *OrderStatus         `json:"status,omitempty"`
	AddressID *uuid.UUID           `json:"addressId,omitempty"`
	Items     []AdminOrderItemEdit `json:"items,omitempty"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}

// OrderStats aggregates order counts and revenue for the admin dashboard.
type OrderStats struct {
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
	TotalOrders    int                 `json:"totalOrders"`
	Revenue        float64             `json:"revenue"`
}
