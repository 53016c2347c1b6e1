package gateway

import "errors"

const paystackDefaultBaseURL = "https://api.paystack.co"

// PaystackConfig contains configuration for the Paystack API
type PaystackConfig struct {
	// SecretKey is the secret API key (sk_test_... or sk_live_...)
	SecretKey string
	// BaseURL overrides the API endpoint, mainly for testing
	BaseURL string
}

// Errors for configuration validation
var (
	ErrPaystackMissingSecretKey = errors.New("paystack: missing secret key")
)

// Validate validates the configuration and applies defaults
func (c *PaystackConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrPaystackMissingSecretKey
	}
	if c.BaseURL == "" {
		c.BaseURL = paystackDefaultBaseURL
	}
	return nil
}
