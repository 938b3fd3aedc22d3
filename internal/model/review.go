package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer review tied to exactly one (product, order, user)
// triple. Reviews are only accepted for delivered orders and for products
// that were part of the order.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	OrderID   uuid.UUID `json:"orderId" db:"order_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	ImageURLs []string  `json:"imageUrls,omitempty" db:"image_urls"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReviewEntry is one product review within a create-review request.
type ReviewEntry struct {
	ProductID uuid.UUID `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	ImageURLs []string  `json:"imageUrls,omitempty"`
}

// CreateReviewRequest reviews one or more products from a delivered order.
type CreateReviewRequest struct {
	OrderID uuid.UUID     `json:"orderId"`
	Entries []ReviewEntry `json:"entries"`
}
