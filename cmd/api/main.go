package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menu-admin/internal/asset"
	"menu-admin/internal/catalog"
	"menu-admin/internal/config"
	"menu-admin/internal/handler"
	"menu-admin/internal/router"
	"menu-admin/internal/service"
	"menu-admin/internal/store"

	"github.com/rs/zerolog"
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
	logger.Info().Msg("starting menu-admin API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the document store backend
	catalogStore, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closeStore()

	// Initialize the image uploader
	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize uploader: %w", err)
	}

	// Start the live catalog mirror
	mirror := catalog.NewMirror(catalogStore, logger)
	if err := mirror.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog mirror: %w", err)
	}
	defer mirror.Stop()

	// Initialize services
	categoryService := service.NewCategoryService(catalogStore, mirror, logger)
	productService := service.NewProductService(catalogStore, uploader, logger)

	// Initialize HTTP handlers
	categoryHandler := handler.NewCategoryHandler(categoryService, mirror, logger)
	productHandler := handler.NewProductHandler(productService, mirror, logger)

	// Initialize router
	mux := router.New(categoryHandler, productHandler, cfg.Auth.APIKey, logger)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newStore builds the configured store backend and its close function.
func newStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, catalog data will not survive a restart")
		return store.NewMemory(logger), func() {}, nil

	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, cfg.Store.Postgres.ConnectionString(), store.PostgresOptions{
			MaxConnections: cfg.Store.Postgres.MaxConnections,
			MinConnections: cfg.Store.Postgres.MinConnections,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil

	case config.StoreFirestore:
		fs, err := store.NewFirestore(ctx, cfg.Store.FirestoreProject, logger)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {
			if err := fs.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close firestore client")
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
}

// newUploader builds the configured image uploader.
func newUploader(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (asset.Uploader, error) {
	switch cfg.Assets.Uploader {
	case config.UploaderNone:
		logger.Info().Msg("image uploads disabled")
		return asset.Disabled{}, nil

	case config.UploaderS3:
		return asset.NewS3Uploader(ctx, cfg.Assets.S3.Bucket, cfg.Assets.S3.Region, cfg.Assets.S3.Prefix, logger)

	case config.UploaderCloudinary:
		cl := cfg.Assets.Cloudinary
		return asset.NewCloudinaryUploader(cl.CloudName, cl.APIKey, cl.APISecret, cl.Folder, logger)
	}
	return nil, fmt.Errorf("unknown asset uploader: %s", cfg.Assets.Uploader)
}
