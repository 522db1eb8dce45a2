// Package usecase implements the notification pipeline business logic: the
// stream consumer, the order API health gate, the order resolver and the
// dispatch engine.
package usecase

import (
	"context"
	"time"

	"github.com/mapan1908/notification-service/internal/notification/channel"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// StreamRepository defines the event log operations the consumer needs.
type StreamRepository interface {
	EnsureGroup(ctx context.Context) error
	ReadBatch(ctx context.Context, count int64, block time.Duration) ([]domain.StreamMessage, error)
	Ack(ctx context.Context, ids ...string) error
	PendingCount(ctx context.Context) (int64, error)
}

// OrderCacheRepository defines read access to the shared order snapshot cache.
type OrderCacheRepository interface {
	Get(ctx context.Context, storeCode, orderID string) (*domain.OrderInfo, error)
}

// HealthRepository defines the shared health flag store operations.
type HealthRepository interface {
	Set(ctx context.Context, healthy bool, ttl time.Duration) error
	Get(ctx context.Context) (healthy bool, found bool, err error)
}

// ChannelConfigRepository defines channel configuration persistence operations.
type ChannelConfigRepository interface {
	Create(ctx context.Context, cfg *domain.ChannelConfig) error
	ListEnabled(ctx context.Context, storeCode, orderType string) ([]*domain.ChannelConfig, error)
	ListByStore(ctx context.Context, storeCode string) ([]*domain.ChannelConfig, error)
}

// DeliveryLogRepository defines the delivery audit log operations.
type DeliveryLogRepository interface {
	Create(ctx context.Context, attempt *domain.DeliveryAttempt) error
	ListByOrder(ctx context.Context, storeCode, orderID string, limit int) ([]*domain.DeliveryAttempt, error)
}

// OrderAPI defines the upstream order service operations.
type OrderAPI interface {
	GetOrder(ctx context.Context, storeCode, orderID, token string) (*domain.OrderInfo, error)
	CheckHealth(ctx context.Context) error
}

// StrategyRegistry resolves the delivery strategy for a channel type.
type StrategyRegistry interface {
	Resolve(channelType domain.ChannelType) (channel.Strategy, bool)
}

// HealthGate answers whether the order API is currently considered healthy.
type HealthGate interface {
	// Start runs the periodic health probe loop until the context is canceled.
	Start(ctx context.Context) error
	// ProbeOnce performs one health probe and publishes the result.
	ProbeOnce(ctx context.Context) bool
	// IsHealthy reports the current health verdict. A disabled gate always
	// reports healthy.
	IsHealthy(ctx context.Context) bool
}

// OrderResolver resolves an event to a full order snapshot, escalating
// unrecoverable failures as *domain.CriticalError.
type OrderResolver interface {
	Resolve(ctx context.Context, event *domain.StreamEvent) (*domain.OrderInfo, error)
}

// Dispatcher fans a resolved event out to every matching enabled channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *domain.StreamEvent) error
}

// Consumer runs the stream ingestion loop.
type Consumer interface {
	Start(ctx context.Context) error
	State() ConsumerState
	InFlight() int64
}

// ChannelConfigUseCase defines the administrative channel configuration
// operations.
type ChannelConfigUseCase interface {
	Create(ctx context.Context, cfg *domain.ChannelConfig) (*domain.ChannelConfig, error)
	ListByStore(ctx context.Context, storeCode string) ([]*domain.ChannelConfig, error)
}

// DeliveryLogUseCase defines the delivery audit inspection operations.
type DeliveryLogUseCase interface {
	ListByOrder(ctx context.Context, storeCode, orderID string, limit int) ([]*domain.DeliveryAttempt, error)
}
