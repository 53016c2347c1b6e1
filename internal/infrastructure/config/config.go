package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Checkout CheckoutConfig
	Payment  PaymentConfig
	Commerce CommerceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds settings for validating customer identity tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodyBytes     int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// CheckoutConfig holds checkout session behavior settings
type CheckoutConfig struct {
	SessionTTL     time.Duration
	DebounceWindow time.Duration
	GuestCartTTL   time.Duration
}

// PaymentConfig holds payment gateway and callback settings
type PaymentConfig struct {
	DefaultGateway    string
	SuccessRedirect   string
	RedirectDelay     time.Duration
	IdempotencyTTL    time.Duration
	RateLimitAttempts int
	RateLimitWindow   time.Duration
	SessionTTL        time.Duration
	CallbackURL       string
	AllowedHosts      []string
	// MinAmount and MaxAmount are in minor currency units
	MinAmount   int64
	MaxAmount   int64
	Currencies  []string
	Methods     []string
	Gateways    []string
	Paystack    GatewayConfig
	Flutterwave GatewayConfig
}

// GatewayConfig holds one payment gateway's credentials and endpoint
type GatewayConfig struct {
	Enabled   bool
	SecretKey string
	BaseURL   string
}

// CommerceConfig holds the upstream commerce API client settings
type CommerceConfig struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerMaxFails uint32
	BreakerInterval time.Duration
	BreakerCooldown time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with CHECKOUT_ prefix (e.g., CHECKOUT_PAYMENT_PAYSTACK_SECRETKEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("CHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodyBytes:     v.GetInt64("http.max_body_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Checkout: CheckoutConfig{
			SessionTTL:     v.GetDuration("checkout.session_ttl"),
			DebounceWindow: v.GetDuration("checkout.debounce_window"),
			GuestCartTTL:   v.GetDuration("checkout.guest_cart_ttl"),
		},
		Payment: PaymentConfig{
			DefaultGateway:    v.GetString("payment.default_gateway"),
			SuccessRedirect:   v.GetString("payment.success_redirect"),
			RedirectDelay:     v.GetDuration("payment.redirect_delay"),
			IdempotencyTTL:    v.GetDuration("payment.idempotency_ttl"),
			RateLimitAttempts: v.GetInt("payment.rate_limit_attempts"),
			RateLimitWindow:   v.GetDuration("payment.rate_limit_window"),
			SessionTTL:        v.GetDuration("payment.session_ttl"),
			CallbackURL:       v.GetString("payment.callback_url"),
			AllowedHosts:      v.GetStringSlice("payment.allowed_hosts"),
			MinAmount:         v.GetInt64("payment.min_amount"),
			MaxAmount:         v.GetInt64("payment.max_amount"),
			Currencies:        v.GetStringSlice("payment.currencies"),
			Methods:           v.GetStringSlice("payment.methods"),
			Gateways:          v.GetStringSlice("payment.gateways"),
			Paystack: GatewayConfig{
				Enabled:   v.GetBool("payment.paystack.enabled"),
				SecretKey: v.GetString("payment.paystack.secretkey"),
				BaseURL:   v.GetString("payment.paystack.baseurl"),
			},
			Flutterwave: GatewayConfig{
				Enabled:   v.GetBool("payment.flutterwave.enabled"),
				SecretKey: v.GetString("payment.flutterwave.secretkey"),
				BaseURL:   v.GetString("payment.flutterwave.baseurl"),
			},
		},
		Commerce: CommerceConfig{
			BaseURL:         v.GetString("commerce.base_url"),
			Timeout:         v.GetDuration("commerce.timeout"),
			BreakerMaxFails: uint32(v.GetInt("commerce.breaker_max_fails")),
			BreakerInterval: v.GetDuration("commerce.breaker_interval"),
			BreakerCooldown: v.GetDuration("commerce.breaker_cooldown"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "checkout-service"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "checkout"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "checkout-service"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.Checkout.SessionTTL == 0 {
		cfg.Checkout.SessionTTL = 30 * time.Minute
	}
	if cfg.Checkout.DebounceWindow == 0 {
		cfg.Checkout.DebounceWindow = 2 * time.Second
	}
	if cfg.Checkout.GuestCartTTL == 0 {
		cfg.Checkout.GuestCartTTL = 30 * 24 * time.Hour
	}
	if cfg.Payment.DefaultGateway == "" {
		cfg.Payment.DefaultGateway = "paystack"
	}
	if cfg.Payment.SuccessRedirect == "" {
		cfg.Payment.SuccessRedirect = "/orders"
	}
	if cfg.Payment.RedirectDelay == 0 {
		cfg.Payment.RedirectDelay = 2 * time.Second
	}
	if cfg.Payment.IdempotencyTTL == 0 {
		cfg.Payment.IdempotencyTTL = 24 * time.Hour
	}
	if cfg.Payment.RateLimitAttempts == 0 {
		cfg.Payment.RateLimitAttempts = 5
	}
	if cfg.Payment.RateLimitWindow == 0 {
		cfg.Payment.RateLimitWindow = 15 * time.Minute
	}
	if cfg.Payment.SessionTTL == 0 {
		cfg.Payment.SessionTTL = 30 * time.Minute
	}
	if len(cfg.Payment.AllowedHosts) == 0 {
		cfg.Payment.AllowedHosts = []string{
			"paystack.com", "checkout.paystack.com",
			"flutterwave.com", "checkout.flutterwave.com",
		}
	}
	if cfg.Payment.MinAmount == 0 {
		cfg.Payment.MinAmount = 50
	}
	if cfg.Payment.MaxAmount == 0 {
		cfg.Payment.MaxAmount = 10_000_000
	}
	if len(cfg.Payment.Currencies) == 0 {
		cfg.Payment.Currencies = []string{"NGN", "GHS", "KES", "ZAR", "USD"}
	}
	if len(cfg.Payment.Methods) == 0 {
		cfg.Payment.Methods = []string{"card", "bank_transfer", "ussd", "mobile_money"}
	}
	if len(cfg.Payment.Gateways) == 0 {
		cfg.Payment.Gateways = []string{"paystack", "flutterwave"}
	}
	if cfg.Payment.Paystack.BaseURL == "" {
		cfg.Payment.Paystack.BaseURL = "https://api.paystack.co"
	}
	if cfg.Payment.Flutterwave.BaseURL == "" {
		cfg.Payment.Flutterwave.BaseURL = "https://api.flutterwave.com"
	}
	if cfg.Commerce.BaseURL == "" {
		cfg.Commerce.BaseURL = "http://localhost:9000"
	}
	if cfg.Commerce.Timeout == 0 {
		cfg.Commerce.Timeout = 10 * time.Second
	}
	if cfg.Commerce.BreakerMaxFails == 0 {
		cfg.Commerce.BreakerMaxFails = 5
	}
	if cfg.Commerce.BreakerInterval == 0 {
		cfg.Commerce.BreakerInterval = time.Minute
	}
	if cfg.Commerce.BreakerCooldown == 0 {
		cfg.Commerce.BreakerCooldown = 30 * time.Second
	}
}

// validate checks configuration for obvious mistakes
func (c *Config) validate() error {
	switch c.App.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid app.env %q (expected development, test or production)", c.App.Env)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	switch c.Payment.DefaultGateway {
	case "paystack", "flutterwave":
	default:
		return fmt.Errorf("invalid payment.default_gateway %q", c.Payment.DefaultGateway)
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if c.Payment.Paystack.Enabled && c.Payment.Paystack.SecretKey == "" {
			return fmt.Errorf("payment.paystack.secretkey is required when paystack is enabled in production")
		}
		if c.Payment.Flutterwave.Enabled && c.Payment.Flutterwave.SecretKey == "" {
			return fmt.Errorf("payment.flutterwave.secretkey is required when flutterwave is enabled in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}

	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Addr returns the Redis host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
