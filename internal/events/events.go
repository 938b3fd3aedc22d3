package events

import (
	"time"

	"foodcourt/internal/model"

	"github.com/google/uuid"
)

// Event kinds published on the order lifecycle topic. A downstream
// notification service consumes these and delivers customer emails.
const (
	KindOrderCreated       = "order.created"
	KindOrderStatusChanged = "order.status_changed"
	KindPaymentCompleted   = "payment.completed"
	KindPaymentFailed      = "payment.failed"
)

// Envelope wraps every published event with identity and timing.
type Envelope struct {
	EventID   uuid.UUID `json:"eventId"`
	Kind      string    `json:"kind"`
	OrderID   uuid.UUID `json:"orderId"`
	UserID    uuid.UUID `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// OrderCreatedPayload describes a freshly created order.
type OrderCreatedPayload struct {
	OrderNumber string            `json:"orderNumber,omitempty"`
	Total       float64           `json:"total"`
	Items       []model.OrderItem `json:"items"`
}

// StatusChangedPayload describes a fulfilment status transition.
type StatusChangedPayload struct {
	From  model.OrderStatus `json:"from"`
	To    model.OrderStatus `json:"to"`
	Actor string            `json:"actor"`
}

// PaymentPayload describes a payment outcome.
type PaymentPayload struct {
	OrderNumber string  `json:"orderNumber,omitempty"`
	Amount      float64 `json:"amount"`
}
