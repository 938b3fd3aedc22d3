package model

import "github.com/google/uuid"

// PaymentSession is handed to the client to complete a payment attempt
// against the gateway.
type PaymentSession struct {
	OrderID      uuid.UUID `json:"orderId"`
	OrderNumber  string    `json:"orderNumber"`
	ClientSecret string    `json:"clientSecret"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
}

// CreatePaymentSessionRequest starts a payment attempt for an order.
type CreatePaymentSessionRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}
