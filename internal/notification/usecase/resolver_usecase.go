package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mapan1908/notification-service/internal/metrics"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// ResolverConfig holds order resolver configuration.
type ResolverConfig struct {
	// QuickRetryAttempts is the total number of order API attempts made before
	// escalating a transient failure.
	QuickRetryAttempts int
	// QuickRetryDelay is the fixed delay between attempts.
	QuickRetryDelay time.Duration
	// MaxEventAge is the maximum actionable age of an event.
	MaxEventAge time.Duration
}

// OrderResolverUseCase resolves a lifecycle event to a full order snapshot:
// staleness check, shared cache, health gate, then a bounded quick-retry loop
// against the order API. Unrecoverable failures surface as
// *domain.CriticalError so the consumer withholds acknowledgement.
type OrderResolverUseCase struct {
	config     ResolverConfig
	cache      OrderCacheRepository
	orderAPI   OrderAPI
	healthGate HealthGate
	metrics    metrics.PipelineMetrics
	logger     *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewOrderResolverUseCase creates a new OrderResolverUseCase.
func NewOrderResolverUseCase(
	config ResolverConfig,
	cache OrderCacheRepository,
	orderAPI OrderAPI,
	healthGate HealthGate,
	pipelineMetrics metrics.PipelineMetrics,
	logger *slog.Logger,
) *OrderResolverUseCase {
	if config.QuickRetryAttempts <= 0 {
		config.QuickRetryAttempts = 1
	}
	if pipelineMetrics == nil {
		pipelineMetrics = metrics.NewNoOpPipelineMetrics()
	}

	return &OrderResolverUseCase{
		config:     config,
		cache:      cache,
		orderAPI:   orderAPI,
		healthGate: healthGate,
		metrics:    pipelineMetrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve resolves the event to an order snapshot.
func (uc *OrderResolverUseCase) Resolve(
	ctx context.Context,
	event *domain.StreamEvent,
) (*domain.OrderInfo, error) {
	if uc.stale(event) {
		uc.metrics.RecordResolverAttempt(ctx, "stale")
		return nil, domain.NewCriticalError(domain.ReasonStale, 0, nil)
	}

	if order := uc.fromCache(ctx, event); order != nil {
		uc.metrics.RecordResolverAttempt(ctx, "cache_hit")
		return order, nil
	}

	// The gate only guards the API path; cache hits above bypass it entirely.
	if !uc.healthGate.IsHealthy(ctx) {
		uc.metrics.RecordResolverAttempt(ctx, "unhealthy")
		return nil, domain.NewCriticalError(domain.ReasonUpstreamUnhealthy, 0, nil)
	}

	return uc.fromAPI(ctx, event)
}

// stale reports whether the event exceeded the maximum actionable age.
func (uc *OrderResolverUseCase) stale(event *domain.StreamEvent) bool {
	return event.Age(uc.now()) > uc.config.MaxEventAge
}

// fromCache attempts a shared cache read. Any cache failure degrades to a
// miss, as does an entry that is malformed or belongs to a different store
// than the event claims.
func (uc *OrderResolverUseCase) fromCache(ctx context.Context, event *domain.StreamEvent) *domain.OrderInfo {
	order, err := uc.cache.Get(ctx, event.StoreCode, event.OrderID)
	if err != nil {
		return nil
	}
	if !order.WellFormed() || order.StoreCode != event.StoreCode {
		if uc.logger != nil {
			uc.logger.Warn("discarding unusable order cache entry",
				slog.String("store_code", event.StoreCode),
				slog.String("order_id", event.OrderID),
			)
		}
		return nil
	}
	return order
}

// fromAPI runs the bounded quick-retry loop against the order API. Definitive
// responses escalate immediately; transient failures retry after a fixed
// delay, re-checking staleness between attempts so a slow retry window cannot
// push a now-stale event back to the API.
func (uc *OrderResolverUseCase) fromAPI(
	ctx context.Context,
	event *domain.StreamEvent,
) (*domain.OrderInfo, error) {
	var lastErr error

	for attempt := 1; attempt <= uc.config.QuickRetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, domain.NewCriticalError(domain.ReasonRetriesExhausted, attempt-1, ctx.Err())
			case <-time.After(uc.config.QuickRetryDelay):
			}

			if uc.stale(event) {
				uc.metrics.RecordResolverAttempt(ctx, "stale")
				return nil, domain.NewCriticalError(domain.ReasonStale, attempt-1, lastErr)
			}
		}

		order, err := uc.orderAPI.GetOrder(ctx, event.StoreCode, event.OrderID, event.Token)
		if err == nil {
			uc.metrics.RecordResolverAttempt(ctx, "api_success")
			return order, nil
		}
		lastErr = err

		var apiErr *domain.OrderAPIError
		if errors.As(err, &apiErr) && apiErr.Definitive() {
			uc.metrics.RecordResolverAttempt(ctx, "definitive")
			reason := domain.ReasonClientError
			if apiErr.NotFound() {
				reason = domain.ReasonOrderNotFound
			}
			return nil, domain.NewCriticalError(reason, attempt, err)
		}

		uc.metrics.RecordResolverAttempt(ctx, "retryable")
		if uc.logger != nil {
			uc.logger.Warn("order api attempt failed",
				slog.String("order_id", event.OrderID),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		}
	}

	return nil, domain.NewCriticalError(domain.ReasonRetriesExhausted, uc.config.QuickRetryAttempts, lastErr)
}
