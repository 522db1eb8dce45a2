// Package app provides the dependency injection container for assembling
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	goredis "github.com/go-redis/redis/v8"

	"github.com/mapan1908/notification-service/internal/config"
	"github.com/mapan1908/notification-service/internal/database"
	"github.com/mapan1908/notification-service/internal/http"
	"github.com/mapan1908/notification-service/internal/metrics"
	"github.com/mapan1908/notification-service/internal/notification/channel"
	"github.com/mapan1908/notification-service/internal/notification/usecase"
	"github.com/mapan1908/notification-service/internal/redis"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	redisClient     *goredis.Client
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	pipelineMetrics metrics.PipelineMetrics

	// Repositories
	streamRepo        usecase.StreamRepository
	orderCacheRepo    usecase.OrderCacheRepository
	healthRepo        usecase.HealthRepository
	channelConfigRepo usecase.ChannelConfigRepository
	deliveryLogRepo   usecase.DeliveryLogRepository

	// Services
	orderAPI         usecase.OrderAPI
	strategyRegistry *channel.Registry

	// Use Cases
	healthGate      *usecase.HealthGateUseCase
	resolver        usecase.OrderResolver
	dispatcher      usecase.Dispatcher
	consumer        *usecase.ConsumerUseCase
	channelConfigUC usecase.ChannelConfigUseCase
	deliveryLogUC   usecase.DeliveryLogUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	redisInit             sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	metricsProviderInit   sync.Once
	pipelineMetricsInit   sync.Once
	streamRepoInit        sync.Once
	orderCacheRepoInit    sync.Once
	healthRepoInit        sync.Once
	channelConfigRepoInit sync.Once
	deliveryLogRepoInit   sync.Once
	orderAPIInit          sync.Once
	strategyRegistryInit  sync.Once
	healthGateInit        sync.Once
	resolverInit          sync.Once
	dispatcherInit        sync.Once
	consumerInit          sync.Once
	channelConfigUCInit   sync.Once
	deliveryLogUCInit     sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// RedisClient returns the Redis client used for the stream, the shared order
// cache and the health flag.
func (c *Container) RedisClient() (*goredis.Client, error) {
	var err error
	c.redisInit.Do(func() {
		c.redisClient, err = redis.Connect(redis.Config{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
		if err != nil {
			c.initErrors["redis"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["redis"]; exists {
		return nil, storedErr
	}
	return c.redisClient, nil
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// PipelineMetrics returns the pipeline metrics recorder. A no-op recorder is
// returned when metrics are disabled.
func (c *Container) PipelineMetrics() (metrics.PipelineMetrics, error) {
	var err error
	c.pipelineMetricsInit.Do(func() {
		c.pipelineMetrics, err = c.initPipelineMetrics()
		if err != nil {
			c.initErrors["pipelineMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipelineMetrics"]; exists {
		return nil, storedErr
	}
	return c.pipelineMetrics, nil
}

// HTTPServer returns the operational HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initPipelineMetrics creates the pipeline metrics recorder.
func (c *Container) initPipelineMetrics() (metrics.PipelineMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for pipeline metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpPipelineMetrics(), nil
	}
	return metrics.NewPipelineMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the operational HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	consumer, err := c.Consumer()
	if err != nil {
		return nil, fmt.Errorf("failed to get consumer for http server: %w", err)
	}

	healthGate, err := c.HealthGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get health gate for http server: %w", err)
	}

	streamRepo, err := c.StreamRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get stream repository for http server: %w", err)
	}

	channelConfigUC, err := c.ChannelConfigUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel config use case for http server: %w", err)
	}

	deliveryLogUC, err := c.DeliveryLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery log use case for http server: %w", err)
	}

	server := http.NewServer(
		c.config.ServerHost,
		c.config.ServerPort,
		c.Logger(),
		c.config.CORSEnabled,
		c.config.CORSAllowOrigins,
		consumer,
		healthGate,
		streamRepo,
		channelConfigUC,
		deliveryLogUC,
	)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		server.UseMetricsMiddleware(
			metrics.HTTPMetricsMiddleware(provider.MeterProvider(), c.config.MetricsNamespace),
		)
	}

	return server, nil
}

// initMetricsServer creates the metrics HTTP server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
