package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a food product in the catalogue. The order core treats
// products as read-only; catalogue management mutates them elsewhere, except
// for the review aggregate fields which the review service maintains.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	IsAvailable bool      `json:"isAvailable" db:"is_available"`
	RatingAvg   float64   `json:"ratingAvg" db:"rating_avg"`
	RatingCount int       `json:"ratingCount" db:"rating_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
