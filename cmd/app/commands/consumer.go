package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/mapan1908/notification-service/internal/app"
	"github.com/mapan1908/notification-service/internal/config"
)

// RunConsumer starts the stream consumer, the order API health gate and the
// operational HTTP servers, then blocks until SIGINT/SIGTERM or a fatal error.
// On shutdown the consumer drains in-flight work within StopGracePeriod before
// the process exits.
func RunConsumer(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting consumer",
		slog.String("version", version),
		slog.String("stream", cfg.StreamKey),
		slog.String("group", cfg.ConsumerGroup),
		slog.String("consumer", cfg.ConsumerName),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	consumer, err := container.Consumer()
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}

	healthGate, err := container.HealthGate()
	if err != nil {
		return fmt.Errorf("failed to initialize health gate: %w", err)
	}

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The consumer gets its own done channel so shutdown can wait for the
	// in-flight drain to finish.
	consumerDone := make(chan error, 1)
	go func() {
		consumerDone <- consumer.Start(ctx)
	}()

	componentErr := make(chan error, 3)
	go func() {
		if err := healthGate.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			componentErr <- fmt.Errorf("health gate error: %w", err)
		}
	}()
	go func() {
		if err := server.Start(ctx); err != nil {
			componentErr <- fmt.Errorf("ops server error: %w", err)
		}
	}()
	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				componentErr <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	var runErrors []error
	consumerExited := false

	// Wait for shutdown signal, consumer exit or component error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-consumerDone:
		consumerExited = true
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer error, initiating shutdown", slog.Any("error", err))
			runErrors = append(runErrors, fmt.Errorf("consumer error: %w", err))
		}
		cancel()
	case err := <-componentErr:
		logger.Error("component error, initiating shutdown", slog.Any("error", err))
		runErrors = append(runErrors, err)
		cancel()
	}

	// The consumer bounds its own drain with StopGracePeriod, so this wait
	// terminates.
	if !consumerExited {
		if err := <-consumerDone; err != nil && !errors.Is(err, context.Canceled) {
			runErrors = append(runErrors, fmt.Errorf("consumer error: %w", err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.StopGracePeriod)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		runErrors = append(runErrors, fmt.Errorf("ops server shutdown: %w", err))
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			runErrors = append(runErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	return errors.Join(runErrors...)
}
