package app

import (
	"fmt"

	"github.com/mapan1908/notification-service/internal/notification/channel"
	"github.com/mapan1908/notification-service/internal/notification/repository"
	"github.com/mapan1908/notification-service/internal/notification/service"
	"github.com/mapan1908/notification-service/internal/notification/usecase"
)

// StreamRepository returns the Redis Stream repository used for ingestion.
func (c *Container) StreamRepository() (usecase.StreamRepository, error) {
	var err error
	c.streamRepoInit.Do(func() {
		c.streamRepo, err = c.initStreamRepository()
		if err != nil {
			c.initErrors["streamRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["streamRepo"]; exists {
		return nil, storedErr
	}
	return c.streamRepo, nil
}

// OrderCacheRepository returns the shared order cache repository.
func (c *Container) OrderCacheRepository() (usecase.OrderCacheRepository, error) {
	var err error
	c.orderCacheRepoInit.Do(func() {
		c.orderCacheRepo, err = c.initOrderCacheRepository()
		if err != nil {
			c.initErrors["orderCacheRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderCacheRepo"]; exists {
		return nil, storedErr
	}
	return c.orderCacheRepo, nil
}

// HealthRepository returns the shared health flag repository.
func (c *Container) HealthRepository() (usecase.HealthRepository, error) {
	var err error
	c.healthRepoInit.Do(func() {
		c.healthRepo, err = c.initHealthRepository()
		if err != nil {
			c.initErrors["healthRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["healthRepo"]; exists {
		return nil, storedErr
	}
	return c.healthRepo, nil
}

// ChannelConfigRepository returns the channel config repository based on the
// database driver, wrapped in a read-through cache.
func (c *Container) ChannelConfigRepository() (usecase.ChannelConfigRepository, error) {
	var err error
	c.channelConfigRepoInit.Do(func() {
		c.channelConfigRepo, err = c.initChannelConfigRepository()
		if err != nil {
			c.initErrors["channelConfigRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["channelConfigRepo"]; exists {
		return nil, storedErr
	}
	return c.channelConfigRepo, nil
}

// DeliveryLogRepository returns the delivery log repository based on the
// database driver.
func (c *Container) DeliveryLogRepository() (usecase.DeliveryLogRepository, error) {
	var err error
	c.deliveryLogRepoInit.Do(func() {
		c.deliveryLogRepo, err = c.initDeliveryLogRepository()
		if err != nil {
			c.initErrors["deliveryLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deliveryLogRepo"]; exists {
		return nil, storedErr
	}
	return c.deliveryLogRepo, nil
}

// OrderAPI returns the order API client.
func (c *Container) OrderAPI() (usecase.OrderAPI, error) {
	c.orderAPIInit.Do(func() {
		c.orderAPI = service.NewOrderAPIClient(service.OrderAPIClientConfig{
			BaseURL:      c.config.OrderAPIBaseURL,
			DefaultToken: c.config.OrderAPIToken,
			Timeout:      c.config.OrderAPITimeout,
		})
	})
	return c.orderAPI, nil
}

// StrategyRegistry returns the registry of delivery strategies.
func (c *Container) StrategyRegistry() (*channel.Registry, error) {
	c.strategyRegistryInit.Do(func() {
		c.strategyRegistry = channel.NewRegistry(
			channel.NewWeComBotStrategy(c.config.WeComRateLimitPerMinute, c.config.ChannelSendTimeout),
			channel.NewTemplateMessageStrategy(c.config.ChannelSendTimeout),
			channel.NewVoiceSpeakerStrategy(c.config.ChannelSendTimeout),
		)
	})
	return c.strategyRegistry, nil
}

// HealthGate returns the order API health gate use case.
func (c *Container) HealthGate() (*usecase.HealthGateUseCase, error) {
	var err error
	c.healthGateInit.Do(func() {
		c.healthGate, err = c.initHealthGate()
		if err != nil {
			c.initErrors["healthGate"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["healthGate"]; exists {
		return nil, storedErr
	}
	return c.healthGate, nil
}

// OrderResolver returns the order resolver use case.
func (c *Container) OrderResolver() (usecase.OrderResolver, error) {
	var err error
	c.resolverInit.Do(func() {
		c.resolver, err = c.initOrderResolver()
		if err != nil {
			c.initErrors["resolver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["resolver"]; exists {
		return nil, storedErr
	}
	return c.resolver, nil
}

// Dispatcher returns the dispatch use case.
func (c *Container) Dispatcher() (usecase.Dispatcher, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// Consumer returns the stream consumer use case.
func (c *Container) Consumer() (*usecase.ConsumerUseCase, error) {
	var err error
	c.consumerInit.Do(func() {
		c.consumer, err = c.initConsumer()
		if err != nil {
			c.initErrors["consumer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.consumer, nil
}

// ChannelConfigUseCase returns the channel config use case.
func (c *Container) ChannelConfigUseCase() (usecase.ChannelConfigUseCase, error) {
	var err error
	c.channelConfigUCInit.Do(func() {
		c.channelConfigUC, err = c.initChannelConfigUseCase()
		if err != nil {
			c.initErrors["channelConfigUC"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["channelConfigUC"]; exists {
		return nil, storedErr
	}
	return c.channelConfigUC, nil
}

// DeliveryLogUseCase returns the delivery log use case.
func (c *Container) DeliveryLogUseCase() (usecase.DeliveryLogUseCase, error) {
	var err error
	c.deliveryLogUCInit.Do(func() {
		c.deliveryLogUC, err = c.initDeliveryLogUseCase()
		if err != nil {
			c.initErrors["deliveryLogUC"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deliveryLogUC"]; exists {
		return nil, storedErr
	}
	return c.deliveryLogUC, nil
}

// initStreamRepository creates the Redis Stream repository.
func (c *Container) initStreamRepository() (usecase.StreamRepository, error) {
	client, err := c.RedisClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client for stream repository: %w", err)
	}
	return repository.NewRedisStreamRepository(
		client,
		c.config.StreamKey,
		c.config.ConsumerGroup,
		c.config.ConsumerName,
	), nil
}

// initOrderCacheRepository creates the order cache repository.
func (c *Container) initOrderCacheRepository() (usecase.OrderCacheRepository, error) {
	client, err := c.RedisClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client for order cache repository: %w", err)
	}
	return repository.NewRedisOrderCacheRepository(client), nil
}

// initHealthRepository creates the health flag repository.
func (c *Container) initHealthRepository() (usecase.HealthRepository, error) {
	client, err := c.RedisClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get redis client for health repository: %w", err)
	}
	return repository.NewRedisHealthRepository(client, "order-api"), nil
}

// initChannelConfigRepository creates the channel config repository based on
// the database driver and wraps it in the read-through cache.
func (c *Container) initChannelConfigRepository() (usecase.ChannelConfigRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for channel config repository: %w", err)
	}

	var inner repository.ChannelConfigStore
	switch c.config.DBDriver {
	case "postgres":
		inner = repository.NewPostgreSQLChannelConfigRepository(db)
	case "mysql":
		inner = repository.NewMySQLChannelConfigRepository(db)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	return repository.NewCachedChannelConfigRepository(inner, c.config.ChannelConfigCacheTTL), nil
}

// initDeliveryLogRepository creates the delivery log repository based on the
// database driver.
func (c *Container) initDeliveryLogRepository() (usecase.DeliveryLogRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for delivery log repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return repository.NewPostgreSQLDeliveryLogRepository(db), nil
	case "mysql":
		return repository.NewMySQLDeliveryLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initHealthGate creates the health gate use case.
func (c *Container) initHealthGate() (*usecase.HealthGateUseCase, error) {
	orderAPI, err := c.OrderAPI()
	if err != nil {
		return nil, fmt.Errorf("failed to get order api for health gate: %w", err)
	}

	healthRepo, err := c.HealthRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get health repository for health gate: %w", err)
	}

	return usecase.NewHealthGateUseCase(
		usecase.HealthGateConfig{
			Enabled:  c.config.HealthCheckEnabled,
			Interval: c.config.HealthCheckInterval,
			Timeout:  c.config.HealthCheckTimeout,
		},
		orderAPI,
		healthRepo,
		c.Logger(),
	), nil
}

// initOrderResolver creates the order resolver use case.
func (c *Container) initOrderResolver() (usecase.OrderResolver, error) {
	cache, err := c.OrderCacheRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order cache repository for resolver: %w", err)
	}

	orderAPI, err := c.OrderAPI()
	if err != nil {
		return nil, fmt.Errorf("failed to get order api for resolver: %w", err)
	}

	healthGate, err := c.HealthGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get health gate for resolver: %w", err)
	}

	pipelineMetrics, err := c.PipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline metrics for resolver: %w", err)
	}

	return usecase.NewOrderResolverUseCase(
		usecase.ResolverConfig{
			QuickRetryAttempts: c.config.OrderQuickRetryAttempts,
			QuickRetryDelay:    c.config.OrderQuickRetryDelay,
			MaxEventAge:        c.config.MaxEventAge,
		},
		cache,
		orderAPI,
		healthGate,
		pipelineMetrics,
		c.Logger(),
	), nil
}

// initDispatcher creates the dispatch use case.
func (c *Container) initDispatcher() (usecase.Dispatcher, error) {
	resolver, err := c.OrderResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver for dispatcher: %w", err)
	}

	configRepo, err := c.ChannelConfigRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel config repository for dispatcher: %w", err)
	}

	deliveryLog, err := c.DeliveryLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery log repository for dispatcher: %w", err)
	}

	registry, err := c.StrategyRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy registry for dispatcher: %w", err)
	}

	pipelineMetrics, err := c.PipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline metrics for dispatcher: %w", err)
	}

	return usecase.NewDispatchUseCase(
		resolver,
		configRepo,
		deliveryLog,
		registry,
		pipelineMetrics,
		c.Logger(),
	), nil
}

// initConsumer creates the stream consumer use case.
func (c *Container) initConsumer() (*usecase.ConsumerUseCase, error) {
	streamRepo, err := c.StreamRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get stream repository for consumer: %w", err)
	}

	healthGate, err := c.HealthGate()
	if err != nil {
		return nil, fmt.Errorf("failed to get health gate for consumer: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for consumer: %w", err)
	}

	pipelineMetrics, err := c.PipelineMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline metrics for consumer: %w", err)
	}

	return usecase.NewConsumerUseCase(
		usecase.ConsumerConfig{
			MaxConcurrentTasks: c.config.MaxConcurrentTasks,
			ReadBlockTimeout:   c.config.ReadBlockTimeout,
			UnhealthyBackoff:   c.config.UnhealthyBackoff,
			SaturationBackoff:  c.config.SaturationBackoff,
			StopGracePeriod:    c.config.StopGracePeriod,
		},
		streamRepo,
		healthGate,
		dispatcher,
		pipelineMetrics,
		c.Logger(),
	), nil
}

// initChannelConfigUseCase creates the channel config use case.
func (c *Container) initChannelConfigUseCase() (usecase.ChannelConfigUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for channel config use case: %w", err)
	}

	configRepo, err := c.ChannelConfigRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel config repository for channel config use case: %w", err)
	}

	return usecase.NewChannelConfigUseCase(txManager, configRepo), nil
}

// initDeliveryLogUseCase creates the delivery log use case.
func (c *Container) initDeliveryLogUseCase() (usecase.DeliveryLogUseCase, error) {
	deliveryLog, err := c.DeliveryLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery log repository for delivery log use case: %w", err)
	}

	return usecase.NewDeliveryLogUseCase(deliveryLog), nil
}
