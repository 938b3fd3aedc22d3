package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a single line in a user's cart. UnitPrice is snapshotted from
// the product at the time the item was first added; later catalogue price
// changes do not rewrite existing lines.
type CartItem struct {
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unitPrice" db:"unit_price"`
	Subtotal  float64   `json:"subtotal"`
}

// Cart is the per-user pre-order collection of product selections. Total is
// derived from the items on every read and never stored.
type Cart struct {
	UserID    uuid.UUID  `json:"userId"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ComputeTotal recomputes item subtotals and the cart total from the lines.
func (c *Cart) ComputeTotal() {
	var total float64
	for i := range c.Items {
		c.Items[i].Subtotal = float64(c.Items[i].Quantity) * c.Items[i].UnitPrice
		total += c.Items[i].Subtotal
	}
	c.Total = total
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// UpdateItemRequest is the payload for overwriting a cart line's quantity.
// A quantity of zero or less removes the line.
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}
