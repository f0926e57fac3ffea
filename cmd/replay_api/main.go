package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/accounts-replay-ledger/internal/api_gateway"
	"github.com/accounts-replay-ledger/internal/api_gateway/service"
	"github.com/accounts-replay-ledger/internal/config"
	"github.com/accounts-replay-ledger/internal/logger"
	"github.com/accounts-replay-ledger/internal/transaction_processor/components"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("replay_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting replay API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Connect the enabled snapshot sinks
	sinks, err := components.CreateSinks(appCtx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize snapshot sinks", "error", err)
		os.Exit(1)
	}

	// Initialize services
	replayService := service.NewReplayService(log, components.CreateReplayService(log), sinks.Publisher)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, replayService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting uploads before the sinks go away
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if err := sinks.Close(shutdownCtx); err != nil {
		log.Error("Error closing snapshot sinks", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
