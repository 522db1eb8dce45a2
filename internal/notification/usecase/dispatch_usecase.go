package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mapan1908/notification-service/internal/metrics"
	"github.com/mapan1908/notification-service/internal/notification/channel"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// DispatchUseCase resolves an event and fans it out to every enabled channel
// configured for the merchant and order type. Channel failures are isolated:
// one channel failing never blocks the others, and only resolution failures
// propagate to the caller.
type DispatchUseCase struct {
	resolver    OrderResolver
	configRepo  ChannelConfigRepository
	deliveryLog DeliveryLogRepository
	strategies  StrategyRegistry
	metrics     metrics.PipelineMetrics
	logger      *slog.Logger
}

// NewDispatchUseCase creates a new DispatchUseCase.
func NewDispatchUseCase(
	resolver OrderResolver,
	configRepo ChannelConfigRepository,
	deliveryLog DeliveryLogRepository,
	strategies StrategyRegistry,
	pipelineMetrics metrics.PipelineMetrics,
	logger *slog.Logger,
) *DispatchUseCase {
	if pipelineMetrics == nil {
		pipelineMetrics = metrics.NewNoOpPipelineMetrics()
	}

	return &DispatchUseCase{
		resolver:    resolver,
		configRepo:  configRepo,
		deliveryLog: deliveryLog,
		strategies:  strategies,
		metrics:     pipelineMetrics,
		logger:      logger,
	}
}

// Dispatch processes one parsed event end to end. The returned error is
// non-nil only for resolution failures; a *domain.CriticalError among them
// tells the consumer to withhold acknowledgement.
func (uc *DispatchUseCase) Dispatch(ctx context.Context, event *domain.StreamEvent) error {
	if event.StoreCode == "" {
		uc.auditMessage(ctx, event, domain.DeliveryStatusSkipped, "event carries no store code", 0)
		return nil
	}

	order, err := uc.resolver.Resolve(ctx, event)
	if err != nil {
		retryCount := 0
		var critical *domain.CriticalError
		if errors.As(err, &critical) {
			retryCount = critical.AttemptsMade
		}
		uc.auditMessage(ctx, event, domain.DeliveryStatusFailed, err.Error(), retryCount)
		return err
	}

	configs, err := uc.configRepo.ListEnabled(ctx, event.StoreCode, order.OrderType)
	if err != nil {
		uc.auditMessage(ctx, event, domain.DeliveryStatusFailed, err.Error(), 0)
		return err
	}
	if len(configs) == 0 {
		uc.auditMessage(ctx, event, domain.DeliveryStatusSkipped, "no enabled channel configs", 0)
		return nil
	}

	for _, cfg := range configs {
		uc.deliverOne(ctx, event, order, cfg)
	}

	return nil
}

// deliverOne runs one channel delivery and records the audit row. Strategy
// panics are contained here so a misbehaving channel cannot take down the
// worker.
func (uc *DispatchUseCase) deliverOne(
	ctx context.Context,
	event *domain.StreamEvent,
	order *domain.OrderInfo,
	cfg *domain.ChannelConfig,
) {
	strategy, ok := uc.strategies.Resolve(cfg.ChannelType)
	if !ok {
		message := fmt.Sprintf("no strategy registered for channel type %q", cfg.ChannelType)
		if uc.logger != nil {
			uc.logger.Warn("skipping channel without a registered strategy",
				slog.String("order_id", event.OrderID),
				slog.String("channel_type", string(cfg.ChannelType)),
			)
		}
		uc.metrics.RecordDeliveryAttempt(ctx, string(cfg.ChannelType), string(domain.DeliveryStatusSkipped), 0)
		uc.record(ctx, &domain.DeliveryAttempt{
			ID:           uuid.Must(uuid.NewV7()),
			OrderID:      event.OrderID,
			StoreCode:    event.StoreCode,
			EventType:    event.Event,
			ChannelType:  cfg.ChannelType,
			Status:       domain.DeliveryStatusSkipped,
			ErrorMessage: message,
			CreatedAt:    time.Now().UTC(),
		})
		return
	}

	started := time.Now()

	result, err := uc.send(ctx, strategy, event, order, cfg)
	duration := time.Since(started)

	status := domain.DeliveryStatusSuccess
	errorMessage := ""
	if err != nil {
		status = domain.DeliveryStatusFailed
		errorMessage = err.Error()
		if uc.logger != nil {
			uc.logger.Error("channel delivery failed",
				slog.String("order_id", event.OrderID),
				slog.String("channel_type", string(cfg.ChannelType)),
				slog.Any("error", err),
			)
		}
	}

	uc.metrics.RecordDeliveryAttempt(ctx, string(cfg.ChannelType), string(status), duration)

	attempt := &domain.DeliveryAttempt{
		ID:           uuid.Must(uuid.NewV7()),
		OrderID:      event.OrderID,
		StoreCode:    event.StoreCode,
		EventType:    event.Event,
		ChannelType:  cfg.ChannelType,
		Status:       status,
		ErrorMessage: errorMessage,
		DurationMs:   duration.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
	if result != nil {
		attempt.RequestSnapshot = result.RequestSnapshot
		attempt.ResponseSnapshot = result.ResponseSnapshot
	}

	uc.record(ctx, attempt)
}

// send invokes the strategy, converting panics to errors.
func (uc *DispatchUseCase) send(
	ctx context.Context,
	strategy channel.Strategy,
	event *domain.StreamEvent,
	order *domain.OrderInfo,
	cfg *domain.ChannelConfig,
) (result *channel.SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel strategy panicked: %v", r)
		}
	}()

	return strategy.Send(ctx, channel.Payload{
		Event:  event,
		Order:  order,
		Config: cfg,
	})
}

// auditMessage writes a message-level audit row (no channel type) for skips
// and resolution failures, so the audit log explains every consumed event.
// retryCount carries the resolver's attempt count when resolution failed.
func (uc *DispatchUseCase) auditMessage(
	ctx context.Context,
	event *domain.StreamEvent,
	status domain.DeliveryStatus,
	message string,
	retryCount int,
) {
	uc.record(ctx, &domain.DeliveryAttempt{
		ID:           uuid.Must(uuid.NewV7()),
		OrderID:      event.OrderID,
		StoreCode:    event.StoreCode,
		EventType:    event.Event,
		Status:       status,
		ErrorMessage: message,
		RetryCount:   retryCount,
		CreatedAt:    time.Now().UTC(),
	})
}

// record persists one audit row; persistence failures are logged, never
// propagated, so auditing cannot fail a dispatch.
func (uc *DispatchUseCase) record(ctx context.Context, attempt *domain.DeliveryAttempt) {
	if err := uc.deliveryLog.Create(ctx, attempt); err != nil && uc.logger != nil {
		uc.logger.Error("failed to record delivery attempt",
			slog.String("order_id", attempt.OrderID),
			slog.Any("error", err),
		)
	}
}
