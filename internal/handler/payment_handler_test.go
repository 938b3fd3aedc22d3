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

func TestPaymentHandler_CreateSession(t *testing.T) {
	logger := zerolog.Nop()
	user := customer()
	orderID := uuid.New()

	session := &model.PaymentSession{
		OrderID:      orderID,
		OrderNumber:  "FC-20260901-ABCDEF",
		ClientSecret: "pi_123_secret",
		Amount:       21.50,
		Currency:     "usd",
	}

	tests := []struct {
		name           string
		body           interface{}
		mockReturn     *model.PaymentSession
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "success",
			body:           model.CreatePaymentSessionRequest{OrderID: orderID},
			mockReturn:     session,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "already paid",
			body:           model.CreatePaymentSessionRequest{OrderID: orderID},
			mockError:      model.ErrOrderAlreadyPaid,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "unknown order",
			body:           model.CreatePaymentSessionRequest{OrderID: orderID},
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "missing order id",
			body:           model.CreatePaymentSessionRequest{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockPaymentService)
			if tt.expectService {
				mockService.On("CreateSession", mock.Anything, user, orderID).Return(tt.mockReturn, tt.mockError)
			}

			h := NewPaymentHandler(mockService, logger)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.body))
			req := httptest.NewRequest(http.MethodPost, "/api/payments/session", &body)
			req = authedRequest(req, user)
			rec := httptest.NewRecorder()

			h.CreateSession(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.mockReturn != nil {
				var got model.PaymentSession
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, "pi_123_secret", got.ClientSecret)
			}
		})
	}
}

func TestPaymentHandler_Webhook(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("acknowledged", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

		mockService := new(MockPaymentService)
		mockService.On("HandleWebhook", mock.Anything, payload, "t=1,v1=abc").Return(nil)

		h := NewPaymentHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
		req.Header.Set("Webhook-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()

		h.Webhook(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("bad signature", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

		mockService := new(MockPaymentService)
		mockService.On("HandleWebhook", mock.Anything, payload, "").Return(model.ErrInvalidSignature)

		h := NewPaymentHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
		rec := httptest.NewRecorder()

		h.Webhook(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
