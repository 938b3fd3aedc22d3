package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"foodcourt/internal/config"

	"github.com/rs/zerolog"
)

// Intent is the gateway's tracked representation of a charge attempt. The
// client secret is handed to the frontend to complete the payment.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Gateway creates externally tracked payment intents. Amounts are in minor
// units (cents).
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
}

// httpGateway talks to a Stripe-compatible payment API over HTTPS.
type httpGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    zerolog.Logger
}

// NewHTTPGateway creates a gateway adapter for a Stripe-compatible API.
func NewHTTPGateway(cfg config.PaymentConfig, logger zerolog.Logger) Gateway {
	return &httpGateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		logger:    logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// CreateIntent creates a payment intent carrying the metadata as correlation
// keys, so webhook events can be matched back to the order.
func (g *httpGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment intent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Int64("amount", amount).Msg("payment intent request failed")
		return nil, fmt.Errorf("payment intent request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Error().
			Int("status", resp.StatusCode).
			Int64("amount", amount).
			Msg("gateway rejected payment intent")
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent: %w", err)
	}

	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("gateway returned incomplete payment intent")
	}

	g.logger.Info().
		Str("intent_id", intent.ID).
		Int64("amount", amount).
		Str("currency", currency).
		Msg("payment intent created")

	return &intent, nil
}
