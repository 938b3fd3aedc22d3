package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"foodcourt/internal/model"
	"foodcourt/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxWebhookBody bounds the size of an inbound webhook payload.
const maxWebhookBody = 1 << 20

// PaymentHandler handles payment session and webhook HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// CreateSession handles POST /api/payments/session requests.
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreatePaymentSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w)
		return
	}
	if req.OrderID == uuid.Nil {
		writeValidation(w, "Order ID is required")
		return
	}

	session, err := h.service.CreateSession(r.Context(), user, req.OrderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// Webhook handles POST /api/payments/webhook requests from the gateway.
// The route carries no bearer token; authenticity comes from the signature
// over the raw body.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeValidation(w, "Unreadable request body")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Webhook-Signature")); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
