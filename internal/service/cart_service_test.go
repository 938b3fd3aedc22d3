package service

import (
	"context"
	"testing"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_Get_CreatesEmptyCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("Ensure", ctx, userID).Return(nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.Get(ctx, userID)

	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)

	mockCartRepo.AssertExpectations(t)
}

func TestCartService_AddItem_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	product := &model.Product{
		ID:          productID,
		Name:        "Margherita",
		Price:       9.50,
		IsAvailable: true,
	}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockProductRepo.On("GetByID", ctx, productID).Return(product, nil)
	mockCartRepo.On("Ensure", ctx, userID).Return(nil)
	mockCartRepo.On("UpsertItem", ctx, userID, model.CartItem{
		ProductID: productID,
		Name:      "Margherita",
		Quantity:  2,
		UnitPrice: 9.50,
	}).Return(nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{
		{ProductID: productID, Name: "Margherita", Quantity: 2, UnitPrice: 9.50},
	}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.AddItem(ctx, userID, model.AddItemRequest{ProductID: productID, Quantity: 2})

	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Len(t, cart.Items, 1)
	assert.InDelta(t, 19.00, cart.Total, 1e-9)

	mockCartRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	tests := []struct {
		name     string
		quantity int
		product  *model.Product
		wantErr  error
	}{
		{
			name:     "zero quantity",
			quantity: 0,
			wantErr:  model.ErrInvalidQuantity,
		},
		{
			name:     "negative quantity",
			quantity: -3,
			wantErr:  model.ErrInvalidQuantity,
		},
		{
			name:     "unknown product",
			quantity: 1,
			product:  nil,
			wantErr:  model.ErrProductNotFound,
		},
		{
			name:     "unavailable product",
			quantity: 1,
			product:  &model.Product{ID: productID, Name: "Off-menu", Price: 5.00, IsAvailable: false},
			wantErr:  model.ErrProductUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCartRepo := new(MockCartRepository)
			mockProductRepo := new(MockProductRepository)

			if tt.quantity >= 1 {
				if tt.product == nil {
					mockProductRepo.On("GetByID", ctx, productID).Return(nil, nil)
				} else {
					mockProductRepo.On("GetByID", ctx, productID).Return(tt.product, nil)
				}
			}

			service := NewCartService(mockCartRepo, mockProductRepo, logger)

			cart, err := service.AddItem(ctx, userID, model.AddItemRequest{ProductID: productID, Quantity: tt.quantity})

			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err)
			assert.Nil(t, cart)
			mockCartRepo.AssertNotCalled(t, "UpsertItem")
		})
	}
}

func TestCartService_UpdateItem_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("Exists", ctx, userID).Return(true, nil)
	mockCartRepo.On("SetItemQuantity", ctx, userID, productID, 5).Return(true, nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{
		{ProductID: productID, Name: "Margherita", Quantity: 5, UnitPrice: 9.50},
	}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.UpdateItem(ctx, userID, model.UpdateItemRequest{ProductID: productID, Quantity: 5})

	require.NoError(t, err)
	assert.InDelta(t, 47.50, cart.Total, 1e-9)
	mockCartRepo.AssertExpectations(t)
}

func TestCartService_UpdateItem_ZeroQuantityRemoves(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("Exists", ctx, userID).Return(true, nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{
		{ProductID: productID, Name: "Margherita", Quantity: 2, UnitPrice: 9.50},
	}, nil).Once()
	mockCartRepo.On("DeleteItem", ctx, userID, productID).Return(nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{}, nil).Once()

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.UpdateItem(ctx, userID, model.UpdateItemRequest{ProductID: productID, Quantity: 0})

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	mockCartRepo.AssertExpectations(t)
}

func TestCartService_UpdateItem_MissingLine(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	mockCartRepo.On("Exists", ctx, userID).Return(true, nil)
	mockCartRepo.On("SetItemQuantity", ctx, userID, productID, 2).Return(false, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.UpdateItem(ctx, userID, model.UpdateItemRequest{ProductID: productID, Quantity: 2})

	require.Error(t, err)
	assert.Equal(t, model.ErrCartItemNotFound, err)
	assert.Nil(t, cart)
}

func TestCartService_UpdateItem_NoCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockCartRepo.On("Exists", ctx, userID).Return(false, nil)

	service := NewCartService(mockCartRepo, new(MockProductRepository), logger)

	cart, err := service.UpdateItem(ctx, userID, model.UpdateItemRequest{ProductID: uuid.New(), Quantity: 1})

	require.Error(t, err)
	assert.Equal(t, model.ErrCartNotFound, err)
	assert.Nil(t, cart)
}

func TestCartService_RemoveItem_Idempotent(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	// The line is already gone; removal still succeeds.
	mockCartRepo.On("Ensure", ctx, userID).Return(nil)
	mockCartRepo.On("DeleteItem", ctx, userID, productID).Return(nil)
	mockCartRepo.On("GetItems", ctx, userID).Return([]model.CartItem{}, nil)

	service := NewCartService(mockCartRepo, mockProductRepo, logger)

	cart, err := service.RemoveItem(ctx, userID, productID)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	mockCartRepo.AssertExpectations(t)
}
