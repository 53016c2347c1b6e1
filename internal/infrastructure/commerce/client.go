package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	appcart "github.com/storefront/checkout/internal/application/cart"
	appcheckout "github.com/storefront/checkout/internal/application/checkout"
	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/checkout"
	"github.com/storefront/checkout/internal/domain/shared"
	"github.com/storefront/checkout/internal/infrastructure/config"
)

// Client talks to the upstream commerce API (stores, carts, pricing).
// All calls run through a circuit breaker: when the upstream is
// misbehaving, checkout fails fast instead of stacking up timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

// apiResponse is the upstream response envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a commerce API client
func NewClient(cfg config.CommerceConfig, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:     "commerce-api",
		Interval: cfg.BreakerInterval,
		Timeout:  cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("commerce circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:     logger,
	}
}

// InitializeCheckout validates the store and returns the cart snapshot
// a checkout session is seeded with
func (c *Client) InitializeCheckout(ctx context.Context, storeID int64) (*appcheckout.InitializeResult, error) {
	body, err := c.post(ctx, fmt.Sprintf("/api/v1/stores/%d/checkout/initialize", storeID), nil)
	if err != nil {
		return nil, err
	}

	var result appcheckout.InitializeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("commerce: failed to decode initialize response: %w", err)
	}
	return &result, nil
}

// ValidateStep re-validates the session's items against the store
func (c *Client) ValidateStep(ctx context.Context, req appcheckout.ValidateStepRequest) (*appcheckout.ValidateStepResult, error) {
	body, err := c.post(ctx, fmt.Sprintf("/api/v1/stores/%d/checkout/validate", req.StoreID), req)
	if err != nil {
		return nil, err
	}

	var result appcheckout.ValidateStepResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("commerce: failed to decode validate response: %w", err)
	}
	return &result, nil
}

// AddToCart adds a line to a signed-in user's server-side cart
func (c *Client) AddToCart(ctx context.Context, userToken string, storeID, productID int64, quantity int) error {
	payload := map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}
	_, err := c.request(ctx, http.MethodPost,
		fmt.Sprintf("/api/v1/stores/%d/cart/items", storeID), payload, userToken)
	return err
}

// GetOrder fetches order metadata, used to attribute payment records
// to their store
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*apppayment.OrderInfo, error) {
	body, err := c.request(ctx, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), nil, "")
	if err != nil {
		return nil, err
	}

	var info apppayment.OrderInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("commerce: failed to decode order response: %w", err)
	}
	return &info, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.request(ctx, http.MethodPost, path, payload, "")
}

// request runs one upstream call through the circuit breaker and
// unwraps the response envelope
func (c *Client) request(ctx context.Context, method, path string, payload any, userToken string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("commerce: failed to encode request: %w", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("commerce: failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if userToken != "" {
			req.Header.Set("Authorization", "Bearer "+userToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("commerce: request failed: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("commerce: failed to read response: %w", err)
		}

		var envelope apiResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("commerce: unexpected response (status %d)", resp.StatusCode)
		}

		if !envelope.Success || resp.StatusCode >= 400 {
			return nil, envelopeError(&envelope, resp.StatusCode)
		}
		return envelope.Data, nil
	})
}

// envelopeError maps an upstream error payload onto a domain error
func envelopeError(envelope *apiResponse, statusCode int) error {
	if envelope.Error != nil {
		switch envelope.Error.Code {
		case "STORE_INACTIVE", "STORE_NOT_FOUND":
			return checkout.ErrStoreInactive
		case "EMPTY_CART":
			return checkout.ErrEmptyCart
		}
		return shared.NewDomainError(envelope.Error.Code, envelope.Error.Message)
	}
	return shared.NewDomainError("COMMERCE_ERROR",
		fmt.Sprintf("Commerce API returned status %d", statusCode))
}

var (
	_ appcheckout.CommerceAPI   = (*Client)(nil)
	_ appcart.CartAPI           = (*Client)(nil)
	_ apppayment.OrderDirectory = (*Client)(nil)
)
