package service

import (
	"context"
	"fmt"
	"time"

	"foodcourt/internal/events"
	"foodcourt/internal/model"
	"foodcourt/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	producer    events.Producer
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	producer events.Producer,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		producer:    producer,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create snapshots the user's cart into a new pending order and clears the
// cart in the same transaction. The cart lines are row-locked first, so two
// concurrent calls for one user cannot both consume the same cart: the
// second call sees an empty cart and fails.
func (s *orderService) Create(ctx context.Context, user model.User, addressID uuid.UUID) (*model.Order, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if address == nil || address.UserID != user.ID {
		return nil, model.ErrAddressNotFound
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	items, err := s.cartRepo.GetItemsForUpdate(ctx, tx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if len(items) == 0 {
		err = model.ErrCartEmpty
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		AddressID:     addressID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		order.Total += item.UnitPrice * float64(item.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err = s.orderRepo.Create(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.orderRepo.CreateItems(ctx, tx, orderItems); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    model.OrderStatusPending,
		Actor:     user.Email,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.cartRepo.Clear(ctx, tx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.Items = orderItems

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", user.ID.String()).
		Float64("total", order.Total).
		Int("items", len(orderItems)).
		Msg("order created")

	s.producer.OrderCreated(order)

	return order, nil
}

// GetByID retrieves an order. Callers without the admin role only see their
// own orders; a foreign order is reported as not found rather than forbidden
// so order ids of other users cannot be enumerated.
func (s *orderService) GetByID(ctx context.Context, user model.User, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!user.IsAdmin() && order.UserID != user.ID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListByUser retrieves the user's orders, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetStatusHistory retrieves an order's audit log in append order.
func (s *orderService) GetStatusHistory(ctx context.Context, user model.User, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if _, err := s.GetByID(ctx, user, orderID); err != nil {
		return nil, err
	}
	history, err := s.orderRepo.GetStatusHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get status history: %w", err)
	}
	return history, nil
}

// Delete removes an order with its items and history. Only pending orders
// can be deleted; anything further along must be cancelled instead.
func (s *orderService) Delete(ctx context.Context, user model.User, orderID uuid.UUID) error {
	order, err := s.GetByID(ctx, user, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderStatusPending {
		return model.ErrOrderNotPending
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("user_id", user.ID.String()).
		Msg("order deleted")

	return nil
}

// UpdateStatus applies a fulfilment transition, appending exactly one audit
// entry in the same transaction. Transitions outside the allowed table are
// rejected without touching the order.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, actor string) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.Validation(fmt.Sprintf("Unknown order status %q", status))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("rejected status transition")
		return nil, model.InvalidState(fmt.Sprintf("Cannot transition order from %s to %s", order.Status, status))
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    status,
		Actor:     actor,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	from := order.Status
	order.Status = status

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(from)).
		Str("to", string(status)).
		Str("actor", actor).
		Msg("order status updated")

	s.producer.OrderStatusChanged(order, from, status, actor)

	return order, nil
}

// UpdatePaymentStatus applies a payment-axis transition outside the webhook
// flow, for manual reconciliation and refunds. Marking an order completed
// also confirms it when the fulfilment state allows; a refund leaves the
// fulfilment state alone so a delivered order stays delivered.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus, actor string) (*model.Order, error) {
	if !status.Valid() {
		return nil, model.Validation(fmt.Sprintf("Unknown payment status %q", status))
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.PaymentStatus.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.PaymentStatus)).
			Str("to", string(status)).
			Msg("rejected payment transition")
		return nil, model.ErrInvalidTransition
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	var paidAt *time.Time
	if status == model.PaymentStatusCompleted {
		paidAt = &now
	}

	var ok bool
	ok, err = s.orderRepo.UpdatePayment(ctx, tx, orderID, order.PaymentStatus, status, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if !ok {
		// The payment state moved between the read and the update.
		err = model.ErrInvalidTransition
		return nil, err
	}

	confirmed := false
	if status == model.PaymentStatusCompleted && order.Status.CanTransitionTo(model.OrderStatusConfirmed) {
		if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, model.OrderStatusConfirmed); err != nil {
			return nil, fmt.Errorf("failed to update payment status: %w", err)
		}
		if err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.StatusHistoryEntry{
			ID:        uuid.New(),
			OrderID:   orderID,
			Status:    model.OrderStatusConfirmed,
			Actor:     actor,
			CreatedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("failed to update payment status: %w", err)
		}
		confirmed = true
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	from := order.Status
	order.PaymentStatus = status
	if paidAt != nil {
		order.PaidAt = paidAt
	}
	if confirmed {
		order.Status = model.OrderStatusConfirmed
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_status", string(status)).
		Str("actor", actor).
		Bool("confirmed", confirmed).
		Msg("payment status updated")

	switch status {
	case model.PaymentStatusCompleted:
		s.producer.PaymentCompleted(order)
	case model.PaymentStatusFailed:
		s.producer.PaymentFailed(order)
	}
	if confirmed {
		s.producer.OrderStatusChanged(order, from, model.OrderStatusConfirmed, actor)
	}

	return order, nil
}

// List retrieves orders matching the filter, newest first. Admin surface.
func (s *orderService) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, model.Validation(fmt.Sprintf("Unknown order status %q", filter.Status))
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, model.Validation(fmt.Sprintf("Unknown payment status %q", filter.PaymentStatus))
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Edit applies an allow-listed admin correction to an order. A status change
// goes through the regular transition table and audit log; replaced items
// are repriced from current product prices and the total recomputed.
func (s *orderService) Edit(ctx context.Context, orderID uuid.UUID, edit model.AdminOrderEdit, actor string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to edit order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if edit.Status != nil {
		if !edit.Status.Valid() {
			return nil, model.Validation(fmt.Sprintf("Unknown order status %q", *edit.Status))
		}
		if !order.Status.CanTransitionTo(*edit.Status) {
			return nil, model.InvalidState(fmt.Sprintf("Cannot transition order from %s to %s", order.Status, *edit.Status))
		}
	}
	if edit.AddressID != nil {
		address, err := s.addressRepo.GetByID(ctx, *edit.AddressID)
		if err != nil {
			return nil, fmt.Errorf("failed to edit order: %w", err)
		}
		if address == nil || address.UserID != order.UserID {
			return nil, model.ErrAddressNotFound
		}
	}

	var newItems []model.OrderItem
	var newTotal float64
	if edit.Items != nil {
		if len(edit.Items) == 0 {
			return nil, model.Validation("Order must keep at least one item")
		}
		newItems, newTotal, err = s.repriceItems(ctx, orderID, edit.Items)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to edit order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if edit.Status != nil {
		if err = s.orderRepo.UpdateStatus(ctx, tx, orderID, *edit.Status); err != nil {
			return nil, fmt.Errorf("failed to edit order: %w", err)
		}
		if err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.StatusHistoryEntry{
			ID:        uuid.New(),
			OrderID:   orderID,
			Status:    *edit.Status,
			Actor:     actor,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, fmt.Errorf("failed to edit order: %w", err)
		}
	}
	if edit.AddressID != nil {
		if err = s.orderRepo.UpdateAddress(ctx, tx, orderID, *edit.AddressID); err != nil {
			return nil, fmt.Errorf("failed to edit order: %w", err)
		}
	}
	if newItems != nil {
		if err = s.orderRepo.ReplaceItems(ctx, tx, orderID, newItems, newTotal); err != nil {
			return nil, fmt.Errorf("failed to edit order: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to edit order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("actor", actor).
		Bool("status_changed", edit.Status != nil).
		Bool("items_replaced", newItems != nil).
		Msg("order edited")

	if edit.Status != nil {
		from := order.Status
		order.Status = *edit.Status
		s.producer.OrderStatusChanged(order, from, *edit.Status, actor)
	}

	updated, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to edit order: %w", err)
	}
	return updated, nil
}

// repriceItems resolves the edited lines against the current catalogue.
func (s *orderService) repriceItems(ctx context.Context, orderID uuid.UUID, edits []model.AdminOrderItemEdit) ([]model.OrderItem, float64, error) {
	ids := make([]uuid.UUID, 0, len(edits))
	for _, e := range edits {
		if e.Quantity < 1 {
			return nil, 0, model.ErrInvalidQuantity
		}
		ids = append(ids, e.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to edit order: %w", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]model.OrderItem, 0, len(edits))
	var total float64
	for _, e := range edits {
		product, ok := byID[e.ProductID]
		if !ok {
			return nil, 0, model.ErrProductNotFound
		}
		items = append(items, model.OrderItem{
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  e.Quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * float64(e.Quantity)
	}
	return items, total, nil
}

// Stats aggregates order counts and completed-payment revenue.
func (s *orderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}
	return stats, nil
}
