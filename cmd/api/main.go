package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcourt/internal/config"
	"foodcourt/internal/database"
	"foodcourt/internal/events"
	"foodcourt/internal/handler"
	"foodcourt/internal/payment"
	"foodcourt/internal/repository"
	"foodcourt/internal/router"
	"foodcourt/internal/service"
	"foodcourt/internal/storage"

	"github.com/redis/go-redis/v9"
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
	logger.Info().Msg("starting foodcourt API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	// Initialize the lifecycle event producer
	var producer events.Producer
	if cfg.Kafka.Enabled {
		producer, err = events.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize event producer: %w", err)
		}
	} else {
		producer = events.NewNopProducer()
		logger.Info().Msg("event publishing disabled")
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event producer")
		}
	}()

	// Initialize image storage with S3 and local fallback
	var uploader storage.Uploader
	if cfg.S3.Enabled {
		uploader, err = storage.NewS3Uploader(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 uploader, falling back to local file system")
			uploader = storage.NewFileUploader("uploads", logger)
		}
	} else {
		uploader = storage.NewFileUploader("uploads", logger)
		logger.Info().Msg("using local file system for image uploads (S3 disabled)")
	}

	// Initialize the payment gateway adapter
	gateway := payment.NewHTTPGateway(cfg.Payment, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		productService = service.NewCachedProductService(productService, redisClient, time.Duration(cfg.Redis.TTL)*time.Second, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("product cache enabled")
	}
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, addressRepo, producer, logger)
	paymentService := service.NewPaymentService(orderRepo, gateway, producer, cfg.Payment, logger)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo, logger)
	addressService := service.NewAddressService(addressRepo, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Payment: handler.NewPaymentHandler(paymentService, logger),
		Review:  handler.NewReviewHandler(reviewService, logger),
		Address: handler.NewAddressHandler(addressService, logger),
		Admin:   handler.NewAdminHandler(orderService, logger),
		Upload:  handler.NewUploadHandler(uploader, logger),
	}

	// Initialize router
	mux := router.New(handlers, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
