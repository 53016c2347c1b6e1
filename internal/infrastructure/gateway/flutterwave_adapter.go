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

// FlutterwaveAdapter verifies transactions against the Flutterwave v3 API
type FlutterwaveAdapter struct {
	config     *FlutterwaveConfig
	httpClient *http.Client
}

// NewFlutterwaveAdapter creates a new Flutterwave adapter
func NewFlutterwaveAdapter(config *FlutterwaveConfig) (*FlutterwaveAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &FlutterwaveAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Name returns the gateway identifier
func (a *FlutterwaveAdapter) Name() string {
	return "flutterwave"
}

// Verify fetches the transaction by its tx_ref and normalizes the
// answer. Flutterwave reports "successful" where the normalized
// vocabulary says "success".
func (a *FlutterwaveAdapter) Verify(ctx context.Context, reference string) (*payment.VerificationResult, error) {
	endpoint := fmt.Sprintf("%s/v3/transactions/verify_by_reference?tx_ref=%s",
		a.config.BaseURL, url.QueryEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("flutterwave: failed to build request: %w", err)
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
		return nil, fmt.Errorf("flutterwave: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr flutterwaveVerifyResponse
		_ = json.Unmarshal(body, &apiErr)
		return nil, payment.FromAPIError(resp.StatusCode, apiErr.Message)
	}

	var vr flutterwaveVerifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("flutterwave: failed to decode response: %w", err)
	}

	status := normalizeStatus(vr.Data.Status)
	message := vr.Data.ProcessorResponse
	if message == "" {
		message = vr.Message
	}

	return &payment.VerificationResult{
		Success:  vr.Status == "success" && status == "success",
		Status:   status,
		Message:  message,
		Amount:   vr.Data.Amount,
		Currency: vr.Data.Currency,
	}, nil
}

// Initiate opens a hosted payment and returns its checkout link.
// Flutterwave takes amounts in major units; payment.Data carries
// subunits, so the amount is converted on the way out.
func (a *FlutterwaveAdapter) Initiate(ctx context.Context, order apppayment.InitiationOrder) (string, error) {
	payload := map[string]any{
		"tx_ref":   order.Reference,
		"amount":   order.Data.Amount.Div(decimal.NewFromInt(100)).String(),
		"currency": order.Data.Currency,
		"customer": map[string]any{"email": order.Email},
	}
	if order.CallbackURL != "" {
		payload["redirect_url"] = order.CallbackURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("flutterwave: failed to encode request: %w", err)
	}

	endpoint := a.config.BaseURL + "/v3/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("flutterwave: failed to build request: %w", err)
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
		return "", fmt.Errorf("flutterwave: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr flutterwavePaymentResponse
		_ = json.Unmarshal(raw, &apiErr)
		return "", payment.FromAPIError(resp.StatusCode, apiErr.Message)
	}

	var ir flutterwavePaymentResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return "", fmt.Errorf("flutterwave: failed to decode response: %w", err)
	}
	if ir.Status != "success" || ir.Data.Link == "" {
		return "", payment.NewError(payment.CodeUnknown, ir.Message, false)
	}
	return ir.Data.Link, nil
}
