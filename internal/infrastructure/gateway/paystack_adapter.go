package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/payment"
)

// PaystackAdapter verifies transactions against the Paystack API
type PaystackAdapter struct {
	config     *PaystackConfig
	httpClient *http.Client
}

// NewPaystackAdapter creates a new Paystack adapter
func NewPaystackAdapter(config *PaystackConfig) (*PaystackAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &PaystackAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Name returns the gateway identifier
func (a *PaystackAdapter) Name() string {
	return "paystack"
}

// Verify fetches the transaction by reference and normalizes the answer.
// Paystack reports amounts in subunits; they are converted to major units.
func (a *PaystackAdapter) Verify(ctx context.Context, reference string) (*payment.VerificationResult, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", a.config.BaseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("paystack: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, payment.NewError(payment.CodeServiceUnavailable, err.Error(), true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paystack: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr paystackErrorResponse
		_ = json.Unmarshal(body, &apiErr)
		return nil, payment.FromAPIError(resp.StatusCode, apiErr.Message)
	}

	var vr paystackVerifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("paystack: failed to decode response: %w", err)
	}

	status := normalizeStatus(vr.Data.Status)
	message := vr.Data.GatewayResponse
	if message == "" {
		message = vr.Message
	}

	return &payment.VerificationResult{
		Success:  vr.Status && status == "success",
		Status:   status,
		Message:  message,
		Amount:   decimal.NewFromInt(vr.Data.Amount).Div(decimal.NewFromInt(100)),
		Currency: vr.Data.Currency,
	}, nil
}

// Initiate opens a transaction and returns the hosted checkout URL.
// Paystack takes amounts in subunits, which is what payment.Data carries.
func (a *PaystackAdapter) Initiate(ctx context.Context, order apppayment.InitiationOrder) (string, error) {
	payload := map[string]any{
		"reference": order.Reference,
		"amount":    order.Data.Amount.IntPart(),
		"currency":  order.Data.Currency,
		"email":     order.Email,
	}
	if order.CallbackURL != "" {
		payload["callback_url"] = order.CallbackURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("paystack: failed to encode request: %w", err)
	}

	endpoint := a.config.BaseURL + "/transaction/initialize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("paystack: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", payment.NewError(payment.CodeServiceUnavailable, err.Error(), true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("paystack: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr paystackErrorResponse
		_ = json.Unmarshal(raw, &apiErr)
		return "", payment.FromAPIError(resp.StatusCode, apiErr.Message)
	}

	var ir paystackInitializeResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return "", fmt.Errorf("paystack: failed to decode response: %w", err)
	}
	if !ir.Status || ir.Data.AuthorizationURL == "" {
		return "", payment.NewError(payment.CodeUnknown, ir.Message, false)
	}
	return ir.Data.AuthorizationURL, nil
}
