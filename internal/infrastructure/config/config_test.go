package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "checkout-service", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 30*time.Minute, cfg.Checkout.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.Checkout.DebounceWindow)
	assert.Equal(t, "paystack", cfg.Payment.DefaultGateway)
	assert.Equal(t, 5, cfg.Payment.RateLimitAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Payment.RateLimitWindow)
	assert.Equal(t, "https://api.paystack.co", cfg.Payment.Paystack.BaseURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("invalid env", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "staging"
		assert.Error(t, cfg.validate())
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := base()
		cfg.Log.Level = "trace"
		assert.Error(t, cfg.validate())
	})

	t.Run("invalid default gateway", func(t *testing.T) {
		cfg := base()
		cfg.Payment.DefaultGateway = "stripe"
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires secrets", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		assert.Error(t, cfg.validate())

		cfg.JWT.Secret = "secret"
		cfg.Database.Password = "pass"
		require.NoError(t, cfg.validate())

		cfg.Payment.Paystack.Enabled = true
		assert.Error(t, cfg.validate())
		cfg.Payment.Paystack.SecretKey = "sk_live_x"
		require.NoError(t, cfg.validate())
	})
}

func TestDSNAndAddr(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Contains(t, cfg.Database.DSN(), "host=localhost")
	assert.Contains(t, cfg.Database.DSN(), "dbname=checkout")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}
