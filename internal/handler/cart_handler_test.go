package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodcourt/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCartHandler_Get(t *testing.T) {
	logger := zerolog.Nop()
	user := customer()

	cart := &model.Cart{
		UserID: user.ID,
		Items: []model.CartItem{
			{ProductID: uuid.New(), Name: "Margherita", Quantity: 2, UnitPrice: 9.50, Subtotal: 19.00},
		},
		Total: 19.00,
	}

	mockService := new(MockCartService)
	mockService.On("Get", mock.Anything, user.ID).Return(cart, nil)

	h := NewCartHandler(mockService, logger)

	req, rec := newRequest(http.MethodGet, "/api/cart")
	req = authedRequest(req, user)

	h.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.Cart
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 19.00, got.Total)
	assert.Len(t, got.Items, 1)
}

func TestCartHandler_AddItem(t *testing.T) {
	logger := zerolog.Nop()
	user := customer()
	productID := uuid.New()

	cart := &model.Cart{
		UserID: user.ID,
		Items:  []model.CartItem{{ProductID: productID, Name: "Margherita", Quantity: 1, UnitPrice: 9.50, Subtotal: 9.50}},
		Total:  9.50,
	}

	tests := []struct {
		name           string
		body           interface{}
		mockReturn     *model.Cart
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "success",
			body:           model.AddItemRequest{ProductID: productID, Quantity: 1},
			mockReturn:     cart,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "unknown product",
			body:           model.AddItemRequest{ProductID: productID, Quantity: 1},
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "unavailable product",
			body:           model.AddItemRequest{ProductID: productID, Quantity: 1},
			mockError:      model.ErrProductUnavailable,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "invalid quantity",
			body:           model.AddItemRequest{ProductID: productID, Quantity: 1},
			mockError:      model.ErrInvalidQuantity,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "invalid body",
			body:           "nope",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCartService)
			if tt.expectService {
				mockService.On("AddItem", mock.Anything, user.ID, mock.AnythingOfType("model.AddItemRequest")).Return(tt.mockReturn, tt.mockError)
			}

			h := NewCartHandler(mockService, logger)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", &body)
			req = authedRequest(req, user)
			rec := httptest.NewRecorder()

			h.AddItem(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestCartHandler_UpdateItem(t *testing.T) {
	logger := zerolog.Nop()
	user := customer()
	productID := uuid.New()

	t.Run("updates quantity", func(t *testing.T) {
		cart := &model.Cart{UserID: user.ID, Total: 28.50}

		mockService := new(MockCartService)
		mockService.On("UpdateItem", mock.Anything, user.ID, model.UpdateItemRequest{ProductID: productID, Quantity: 3}).Return(cart, nil)

		h := NewCartHandler(mockService, logger)

		var body bytes.Buffer
		require.NoError(t, json.NewEncoder(&body).Encode(model.UpdateItemRequest{ProductID: productID, Quantity: 3}))
		req := httptest.NewRequest(http.MethodPut, "/api/cart/items", &body)
		req = authedRequest(req, user)
		rec := httptest.NewRecorder()

		h.UpdateItem(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing product id", func(t *testing.T) {
		mockService := new(MockCartService)
		h := NewCartHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPut, "/api/cart/items", bytes.NewBufferString(`{"quantity": 3}`))
		req = authedRequest(req, user)
		rec := httptest.NewRecorder()

		h.UpdateItem(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "UpdateItem")
	})

	t.Run("line not in cart", func(t *testing.T) {
		mockService := new(MockCartService)
		mockService.On("UpdateItem", mock.Anything, user.ID, mock.AnythingOfType("model.UpdateItemRequest")).Return(nil, model.ErrCartItemNotFound)

		h := NewCartHandler(mockService, logger)

		var body bytes.Buffer
		require.NoError(t, json.NewEncoder(&body).Encode(model.UpdateItemRequest{ProductID: productID, Quantity: 2}))
		req := httptest.NewRequest(http.MethodPut, "/api/cart/items", &body)
		req = authedRequest(req, user)
		rec := httptest.NewRecorder()

		h.UpdateItem(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCartHandler_RemoveItem(t *testing.T) {
	logger := zerolog.Nop()
	user := customer()
	productID := uuid.New()

	mockService := new(MockCartService)
	mockService.On("RemoveItem", mock.Anything, user.ID, productID).Return(&model.Cart{UserID: user.ID}, nil)

	h := NewCartHandler(mockService, logger)

	req, rec := newRequest(http.MethodDelete, "/api/cart/items/"+productID.String())
	req = authedRequest(req, user)
	req.SetPathValue("productId", productID.String())

	h.RemoveItem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}
