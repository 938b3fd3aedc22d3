package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"foodcourt/internal/config"
	"foodcourt/internal/events"
	"foodcourt/internal/model"
	"foodcourt/internal/payment"
	"foodcourt/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo     repository.OrderRepository
	gateway       payment.Gateway
	producer      events.Producer
	currency      string
	webhookSecret string
	tolerance     time.Duration
	logger        zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	gateway payment.Gateway,
	producer events.Producer,
	cfg config.PaymentConfig,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:     orderRepo,
		gateway:       gateway,
		producer:      producer,
		currency:      cfg.Currency,
		webhookSecret: cfg.WebhookSecret,
		tolerance:     payment.DefaultTolerance,
		logger:        logger.With().Str("service", "payment").Logger(),
	}
}

// CreateSession creates a gateway payment intent for the order. The order
// number is assigned lazily here, on the first payment attempt; a retry
// after a failed attempt reuses the number but gets a fresh intent.
func (s *paymentService) CreateSession(ctx context.Context, user model.User, orderID uuid.UUID) (*model.PaymentSession, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}
	if order == nil || (!user.IsAdmin() && order.UserID != user.ID) {
		return nil, model.ErrOrderNotFound
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		return nil, model.ErrOrderAlreadyPaid
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, model.InvalidState("Cannot pay for a cancelled order")
	}

	orderNumber := order.OrderNumber
	if orderNumber == "" {
		orderNumber = newOrderNumber(order.ID)
	}

	// Gateways charge in minor units.
	amount := int64(math.Round(order.Total * 100))

	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency, map[string]string{
		"order_id":     order.ID.String(),
		"order_number": orderNumber,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("gateway intent creation failed")
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, order.ID, orderNumber, intent.ID); err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", orderNumber).
		Int64("amount", amount).
		Msg("payment session created")

	return &model.PaymentSession{
		OrderID:      order.ID,
		OrderNumber:  orderNumber,
		ClientSecret: intent.ClientSecret,
		Amount:       order.Total,
		Currency:     s.currency,
	}, nil
}

// HandleWebhook verifies and applies a gateway webhook event. Verification
// fails closed; events for unknown intents and event types outside the
// handled set are acknowledged without effect so the gateway stops
// redelivering them.
func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := payment.ParseEvent(payload, sigHeader, s.webhookSecret, s.tolerance)
	if err != nil {
		s.logger.Warn().Err(err).Msg("webhook rejected")
		return model.ErrInvalidSignature
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.applySucceeded(ctx, event)
	case payment.EventPaymentFailed:
		return s.applyFailed(ctx, event)
	default:
		s.logger.Debug().Str("type", event.Type).Msg("ignoring unhandled webhook event")
		return nil
	}
}

// applySucceeded marks the order paid and confirms it. A redelivered event
// for an already completed order is a no-op, so the transition runs at most
// once per order.
func (s *paymentService) applySucceeded(ctx context.Context, event *payment.Event) error {
	order, err := s.orderRepo.GetByIntentID(ctx, event.IntentID())
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("intent_id", event.IntentID()).Msg("webhook for unknown intent")
		return nil
	}
	if order.PaymentStatus == model.PaymentStatusCompleted {
		s.logger.Debug().Str("order_id", order.ID.String()).Msg("duplicate payment webhook ignored")
		return nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	var ok bool
	ok, err = s.orderRepo.UpdatePayment(ctx, tx, order.ID, order.PaymentStatus, model.PaymentStatusCompleted, &now)
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	if !ok {
		// A concurrent delivery of the same event won the row; this one must
		// not append a second confirmation.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Debug().Str("order_id", order.ID.String()).Msg("duplicate payment webhook ignored")
		return nil
	}

	confirmed := false
	if order.Status.CanTransitionTo(model.OrderStatusConfirmed) {
		if err = s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusConfirmed); err != nil {
			return fmt.Errorf("failed to apply webhook: %w", err)
		}
		if err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.StatusHistoryEntry{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    model.OrderStatusConfirmed,
			Actor:     "payment-gateway",
			CreatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to apply webhook: %w", err)
		}
		confirmed = true
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}

	from := order.Status
	order.PaymentStatus = model.PaymentStatusCompleted
	order.PaidAt = &now
	if confirmed {
		order.Status = model.OrderStatusConfirmed
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Bool("confirmed", confirmed).
		Msg("payment completed")

	s.producer.PaymentCompleted(order)
	if confirmed {
		s.producer.OrderStatusChanged(order, from, model.OrderStatusConfirmed, "payment-gateway")
	}

	return nil
}

// applyFailed records the failed attempt. The fulfilment status is left
// alone so the customer can retry payment on the same pending order.
func (s *paymentService) applyFailed(ctx context.Context, event *payment.Event) error {
	order, err := s.orderRepo.GetByIntentID(ctx, event.IntentID())
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("intent_id", event.IntentID()).Msg("webhook for unknown intent")
		return nil
	}
	if !order.PaymentStatus.CanTransitionTo(model.PaymentStatusFailed) {
		s.logger.Debug().
			Str("order_id", order.ID.String()).
			Str("payment_status", string(order.PaymentStatus)).
			Msg("stale payment failure webhook ignored")
		return nil
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var ok bool
	ok, err = s.orderRepo.UpdatePayment(ctx, tx, order.ID, order.PaymentStatus, model.PaymentStatusFailed, nil)
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	if !ok {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		s.logger.Debug().Str("order_id", order.ID.String()).Msg("stale payment failure webhook ignored")
		return nil
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}

	order.PaymentStatus = model.PaymentStatusFailed

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("payment failed")

	s.producer.PaymentFailed(order)

	return nil
}

// newOrderNumber derives a short human-readable order number. The suffix
// comes from the order id, so retried generation for one order is stable.
func newOrderNumber(orderID uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", ""))[:6]
	return fmt.Sprintf("FC-%s-%s", time.Now().Format("20060102"), suffix)
}
