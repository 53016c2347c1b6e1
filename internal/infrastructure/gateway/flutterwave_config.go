package gateway

import "errors"

const flutterwaveDefaultBaseURL = "https://api.flutterwave.com"

// FlutterwaveConfig contains configuration for the Flutterwave v3 API
type FlutterwaveConfig struct {
	// SecretKey is the secret API key (FLWSECK-...)
	SecretKey string
	// BaseURL overrides the API endpoint, mainly for testing
	BaseURL string
}

// Errors for configuration validation
var (
	ErrFlutterwaveMissingSecretKey = errors.New("flutterwave: missing secret key")
)

// Validate validates the configuration and applies defaults
func (c *FlutterwaveConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrFlutterwaveMissingSecretKey
	}
	if c.BaseURL == "" {
		c.BaseURL = flutterwaveDefaultBaseURL
	}
	return nil
}
