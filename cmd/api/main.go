package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/pricing"
	"storefront/internal/processor"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	sessionIdleTimeout   = 24 * time.Hour
	sessionPruneInterval = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.MigrateOnStart {
		if err := database.MigrateUp(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)

	// Initialize carts, persisted in Redis when enabled
	carts, closeCarts, err := newCartManager(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCarts()

	// Initialize pricing rules with S3 and local fallback
	pricer, err := newPricingProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Initialize event publisher
	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close kafka publisher")
			}
		}()
		publisher = kafkaPublisher
	} else {
		logger.Info().Msg("order events disabled (Kafka disabled)")
	}

	// Initialize payment processor client
	processorClient := processor.New(cfg.Processor, logger)

	// Initialize services
	cartService := service.NewCartService(productRepo, carts, logger)
	addressService := service.NewAddressService(addressRepo, logger)
	confirmationService := service.NewConfirmationService(orderRepo, logger)
	checkoutService := service.NewCheckoutService(
		checkout.NewRegistry(),
		checkout.NewController(addressService, logger),
		checkout.NewOrchestrator(orderRepo, processorClient, carts, pricer, publisher, logger),
		logger,
	)

	go pruneSessions(ctx, checkoutService)

	// Initialize router
	mux := router.New(router.Handlers{
		Cart:     handler.NewCartHandler(cartService, logger),
		Address:  handler.NewAddressHandler(addressService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(confirmationService, logger),
	}, cfg.Auth.APIKey, cfg.Auth.JWTSecret, pool, logger)

	// Create HTTP server. WriteTimeout covers a full submit, which may wait
	// on the processor.
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + 2*cfg.Processor.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCartManager returns a cart manager writing through Redis when enabled,
// or an in-memory store otherwise. The returned func releases the client.
func newCartManager(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*cart.Manager, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory cart store (Redis disabled)")
		return cart.NewManager(cart.NewMemoryStore(), logger), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store := cart.NewRedisStore(client, cfg.CartTTL, logger)
	manager := cart.NewManager(store, logger)

	go func() {
		if err := manager.Watch(ctx, store); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("cart change watcher stopped")
		}
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("cart store connected to redis")
	return manager, func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

// newPricingProvider loads the pricing rules once at start-up.
func newPricingProvider(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pricing.Provider, error) {
	defaults, err := pricing.RulesFromConfig(cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing configuration: %w", err)
	}

	fileLoader := pricing.NewFileLoader(logger)
	var s3Loader pricing.Loader
	if cfg.S3.Enabled {
		s3Loader, err = pricing.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for pricing rules (S3 disabled)")
	}

	loader := pricing.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)

	provider, err := pricing.NewProvider(ctx, loader, cfg.Pricing.RulesPath, defaults, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pricing rules: %w", err)
	}

	rules := provider.Rules()
	logger.Info().
		Str("currency", rules.Currency).
		Str("tax_rate", rules.TaxRate.String()).
		Str("shipping_fee", rules.ShippingFee.String()).
		Msg("pricing rules loaded")

	return provider, nil
}

// pruneSessions drops idle checkout sessions until ctx is done.
func pruneSessions(ctx context.Context, checkoutService service.CheckoutService) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkoutService.PruneIdle(sessionIdleTimeout)
		}
	}
}
