package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/invoicedesk/invoicedesk/internal/api"
	"github.com/invoicedesk/invoicedesk/internal/config"
	"github.com/invoicedesk/invoicedesk/internal/logger"
	"github.com/invoicedesk/invoicedesk/internal/repository"
	"github.com/invoicedesk/invoicedesk/internal/service"
	"github.com/invoicedesk/invoicedesk/internal/session"
	"github.com/invoicedesk/invoicedesk/internal/uploader"
	invoicedesk "github.com/invoicedesk/invoicedesk/sdk/go"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := logger.Setup(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	// Upstream clients are built per request, bound to the caller's token.
	upstream := service.UpstreamFactory(func(token string) service.Upstream {
		return invoicedesk.NewClient(cfg.UpstreamURL, invoicedesk.WithToken(token))
	})

	// Edit sessions and the schema cache live in Redis.
	sessionStore, err := session.NewRedisStore(cfg.RedisURL, cfg.EditSessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer sessionStore.Close()

	schemaService, err := service.NewSchemaService(cfg.RedisURL, cfg.SchemaCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer schemaService.Close()

	// Upload history is optional: without a database the service still runs.
	var uploadRepo *repository.UploadRepository
	if cfg.DatabaseURL != "" {
		uploadRepo, err = repository.NewUploadRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer uploadRepo.Close()

		if err := uploadRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare upload_history schema")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, upload history disabled")
	}

	// Initialize services
	authService := service.NewAuthService(upstream, schemaService, cfg.JWTSecret)
	editService := service.NewEditService(sessionStore, schemaService)
	batchUploader := uploader.New(uploader.Config{
		MaxBatchSize: cfg.UploadBatchSize,
		BatchDelay:   cfg.UploadBatchDelay,
		RetryDelay:   cfg.UploadRetryDelay,
		MaxRetries:   cfg.UploadMaxRetries,
	}, logger.WithComponent("uploader"))
	uploadService := service.NewUploadService(batchUploader, uploadRepo, logger.WithComponent("uploads"))

	// Set up router
	router := api.NewRouter(
		upstream,
		authService,
		editService,
		uploadService,
	)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // batch uploads pace themselves
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting invoicedesk server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited gracefully")
}
