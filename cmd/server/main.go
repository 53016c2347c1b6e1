package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcart "github.com/storefront/checkout/internal/application/cart"
	appcheckout "github.com/storefront/checkout/internal/application/checkout"
	apppayment "github.com/storefront/checkout/internal/application/payment"
	domainpayment "github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/domain/shared"
	"github.com/storefront/checkout/internal/infrastructure/cache"
	"github.com/storefront/checkout/internal/infrastructure/commerce"
	"github.com/storefront/checkout/internal/infrastructure/config"
	"github.com/storefront/checkout/internal/infrastructure/event"
	"github.com/storefront/checkout/internal/infrastructure/gateway"
	"github.com/storefront/checkout/internal/infrastructure/logger"
	"github.com/storefront/checkout/internal/infrastructure/persistence"
	"github.com/storefront/checkout/internal/interfaces/http/handler"
	"github.com/storefront/checkout/internal/interfaces/http/middleware"
	"github.com/storefront/checkout/internal/interfaces/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	// Redis backs sessions, guest carts and callback idempotency. When it
	// is unreachable the server still boots on in-memory stores so local
	// development does not require a running Redis.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisUp := true
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisUp = false
		log.Warn("redis unreachable, falling back to in-memory stores",
			zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}
	cancelPing()
	defer redisClient.Close()

	bus := event.NewInMemoryEventBus(log)

	var sessionStore appcheckout.SessionStore
	var guestCartStore appcart.GuestCartStore
	var paymentSessions apppayment.SessionStore
	var idemStore shared.IdempotencyStore
	if redisUp {
		sessionStore = persistence.NewRedisSessionStore(redisClient)
		guestCartStore = persistence.NewRedisGuestCartStore(redisClient, cfg.Checkout.GuestCartTTL, log)
		paymentSessions = persistence.NewRedisPaymentSessionStore(redisClient)
		store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
		if err != nil {
			return fmt.Errorf("create idempotency store: %w", err)
		}
		idemStore = store
	} else {
		sessionStore = persistence.NewInMemorySessionStore()
		guestCartStore = persistence.NewInMemoryGuestCartStore(bus)
		paymentSessions = persistence.NewInMemoryPaymentSessionStore()
		idemStore = cache.NewInMemoryIdempotencyStore()
	}
	defer idemStore.Close()

	commerceClient := commerce.NewClient(cfg.Commerce, log)

	var verifiers []apppayment.Verifier
	if cfg.Payment.Paystack.Enabled {
		v, err := gateway.NewPaystackAdapter(&gateway.PaystackConfig{
			SecretKey: cfg.Payment.Paystack.SecretKey,
			BaseURL:   cfg.Payment.Paystack.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("init paystack: %w", err)
		}
		verifiers = append(verifiers, v)
	}
	if cfg.Payment.Flutterwave.Enabled {
		v, err := gateway.NewFlutterwaveAdapter(&gateway.FlutterwaveConfig{
			SecretKey: cfg.Payment.Flutterwave.SecretKey,
			BaseURL:   cfg.Payment.Flutterwave.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("init flutterwave: %w", err)
		}
		verifiers = append(verifiers, v)
	}
	if len(verifiers) == 0 {
		log.Warn("no payment gateways enabled, callbacks will fail verification")
	}
	registry := gateway.NewRegistry(verifiers...)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	recordRepo := persistence.NewGormPaymentRecordRepository(db.DB)

	recorder := apppayment.NewRecorder(recordRepo, commerceClient, log)
	callbacks := apppayment.NewCallbackService(registry, recorder, idemStore, log, apppayment.CallbackConfig{
		DefaultGateway:  cfg.Payment.DefaultGateway,
		SuccessRedirect: cfg.Payment.SuccessRedirect,
		RedirectDelay:   cfg.Payment.RedirectDelay,
		IdempotencyTTL:  cfg.Payment.IdempotencyTTL,
	}, apppayment.WithSessions(paymentSessions))

	initiations := apppayment.NewInitiationService(registry, paymentSessions, log, apppayment.InitiationConfig{
		Policy: domainpayment.Policy{
			MinAmount:  decimal.NewFromInt(cfg.Payment.MinAmount),
			MaxAmount:  decimal.NewFromInt(cfg.Payment.MaxAmount),
			Currencies: cfg.Payment.Currencies,
			Methods:    cfg.Payment.Methods,
			Gateways:   cfg.Payment.Gateways,
		},
		AllowedHosts: cfg.Payment.AllowedHosts,
		SessionTTL:   cfg.Payment.SessionTTL,
		CallbackURL:  cfg.Payment.CallbackURL,
	})

	hub := appcheckout.NewHub(commerceClient, sessionStore, bus, log, appcheckout.Config{
		SessionTTL:     cfg.Checkout.SessionTTL,
		DebounceWindow: cfg.Checkout.DebounceWindow,
	})
	carts := appcart.NewService(guestCartStore, commerceClient, log)

	paymentLimiter := domainpayment.NewRateLimiter(cfg.Payment.RateLimitAttempts, cfg.Payment.RateLimitWindow)
	defer paymentLimiter.Close()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodyBytes))
	engine.Use(middleware.Identity(middleware.IdentityConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}))
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	callbackHandler := handler.NewPaymentCallbackHandler(callbacks, log)
	initiationHandler := handler.NewPaymentInitiationHandler(initiations, log)
	router.NewRouter(engine).
		Register(handler.NewSystemHandler()).
		Register(handler.NewCheckoutHandler(hub, log)).
		Register(handler.NewGuestCartHandler(carts, log)).
		Register(handler.NewOrderTrackingHandler(recordRepo, log)).
		Register(router.RegistrarFunc(func(rg *gin.RouterGroup) {
			limited := rg.Group("", middleware.RateLimit(paymentLimiter, cfg.Payment.RateLimitAttempts))
			callbackHandler.RegisterRoutes(limited)
			initiationHandler.RegisterRoutes(limited)
		})).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
