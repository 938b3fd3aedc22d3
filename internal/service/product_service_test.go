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

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	products := []model.Product{
		{ID: uuid.New(), Name: "Margherita", Price: 9.50, Category: "pizza", IsAvailable: true},
		{ID: uuid.New(), Name: "Cola", Price: 2.50, Category: "drinks", IsAvailable: true},
	}

	mockProductRepo := new(MockProductRepository)
	mockProductRepo.On("GetAll", ctx, 20, 0).Return(products, nil)

	service := NewProductService(mockProductRepo, logger)

	got, err := service.GetAll(ctx, 0, -5)

	require.NoError(t, err)
	assert.Equal(t, products, got)
	// Defaults were applied to the out-of-range paging arguments.
	mockProductRepo.AssertExpectations(t)
}

func TestProductService_GetAll_CapsLimit(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockProductRepo.On("GetAll", ctx, 100, 10).Return([]model.Product{}, nil)

	service := NewProductService(mockProductRepo, logger)

	_, err := service.GetAll(ctx, 5000, 10)
	require.NoError(t, err)
	mockProductRepo.AssertExpectations(t)
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	productID := uuid.New()

	t.Run("found", func(t *testing.T) {
		product := &model.Product{ID: productID, Name: "Margherita", Price: 9.50}

		mockProductRepo := new(MockProductRepository)
		mockProductRepo.On("GetByID", ctx, productID).Return(product, nil)

		service := NewProductService(mockProductRepo, logger)

		got, err := service.GetByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, product, got)
	})

	t.Run("missing", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockProductRepo.On("GetByID", ctx, productID).Return(nil, nil)

		service := NewProductService(mockProductRepo, logger)

		got, err := service.GetByID(ctx, productID)
		require.Error(t, err)
		assert.Equal(t, model.ErrProductNotFound, err)
		assert.Nil(t, got)
	})
}
