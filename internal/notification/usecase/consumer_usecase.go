package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mapan1908/notification-service/internal/metrics"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// ConsumerState describes what the ingestion loop is currently doing.
type ConsumerState string

const (
	ConsumerStateRunning         ConsumerState = "running"
	ConsumerStatePausedUnhealthy ConsumerState = "paused_unhealthy"
	ConsumerStatePausedSaturated ConsumerState = "paused_saturated"
	ConsumerStateStopping        ConsumerState = "stopping"
	ConsumerStateStopped         ConsumerState = "stopped"
)

// ConsumerConfig holds stream consumer configuration.
type ConsumerConfig struct {
	// MaxConcurrentTasks is the ceiling on in-flight message workers.
	MaxConcurrentTasks int
	// ReadBlockTimeout is how long one stream read blocks when no messages
	// are available.
	ReadBlockTimeout time.Duration
	// UnhealthyBackoff is how long ingestion pauses while the order API is
	// unhealthy.
	UnhealthyBackoff time.Duration
	// SaturationBackoff is how long ingestion pauses while the worker pool
	// is full.
	SaturationBackoff time.Duration
	// StopGracePeriod bounds the wait for in-flight workers on shutdown.
	StopGracePeriod time.Duration
}

// ConsumerUseCase reads lifecycle events from the stream under a consumer
// group and hands each message to a bounded worker pool. Ingestion pauses
// while the order API is unhealthy or the pool is saturated; messages are
// acknowledged unless processing ends in a critical resolution failure.
type ConsumerUseCase struct {
	config     ConsumerConfig
	streamRepo StreamRepository
	healthGate HealthGate
	dispatcher Dispatcher
	metrics    metrics.PipelineMetrics
	logger     *slog.Logger

	inFlight atomic.Int64

	mu    sync.RWMutex
	state ConsumerState
}

// NewConsumerUseCase creates a new ConsumerUseCase.
func NewConsumerUseCase(
	config ConsumerConfig,
	streamRepo StreamRepository,
	healthGate HealthGate,
	dispatcher Dispatcher,
	pipelineMetrics metrics.PipelineMetrics,
	logger *slog.Logger,
) *ConsumerUseCase {
	if config.MaxConcurrentTasks <= 0 {
		config.MaxConcurrentTasks = 1
	}
	if pipelineMetrics == nil {
		pipelineMetrics = metrics.NewNoOpPipelineMetrics()
	}

	return &ConsumerUseCase{
		config:     config,
		streamRepo: streamRepo,
		healthGate: healthGate,
		dispatcher: dispatcher,
		metrics:    pipelineMetrics,
		logger:     logger,
		state:      ConsumerStateStopped,
	}
}

// Start runs the ingestion loop until the context is canceled, then drains
// in-flight workers within the configured grace period.
func (uc *ConsumerUseCase) Start(ctx context.Context) error {
	if err := uc.streamRepo.EnsureGroup(ctx); err != nil {
		return err
	}

	if uc.logger != nil {
		uc.logger.Info("starting stream consumer",
			slog.Int("max_concurrent_tasks", uc.config.MaxConcurrentTasks),
			slog.Duration("read_block_timeout", uc.config.ReadBlockTimeout),
		)
	}

	pool := &errgroup.Group{}
	pool.SetLimit(uc.config.MaxConcurrentTasks)

	// Workers must outlive a canceled read loop so in-flight deliveries and
	// acknowledgements finish during the grace period.
	workerCtx := context.WithoutCancel(ctx)

	uc.setState(ConsumerStateRunning)

	for ctx.Err() == nil {
		if !uc.healthGate.IsHealthy(ctx) {
			uc.setState(ConsumerStatePausedUnhealthy)
			uc.sleep(ctx, uc.config.UnhealthyBackoff)
			continue
		}

		capacity := int64(uc.config.MaxConcurrentTasks) - uc.inFlight.Load()
		if capacity <= 0 {
			uc.setState(ConsumerStatePausedSaturated)
			uc.sleep(ctx, uc.config.SaturationBackoff)
			continue
		}

		uc.setState(ConsumerStateRunning)

		messages, err := uc.streamRepo.ReadBatch(ctx, capacity, uc.config.ReadBlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if uc.logger != nil {
				uc.logger.Error("stream read failed", slog.Any("error", err))
			}
			uc.sleep(ctx, uc.config.UnhealthyBackoff)
			continue
		}

		for _, msg := range messages {
			msg := msg
			uc.inFlight.Add(1)
			if !pool.TryGo(func() error {
				defer uc.inFlight.Add(-1)
				uc.handleMessage(workerCtx, msg)
				return nil
			}) {
				// The pool filled between the capacity check and here;
				// process inline rather than dropping the message.
				uc.handleMessage(workerCtx, msg)
				uc.inFlight.Add(-1)
			}
		}
	}

	return uc.drain(pool)
}

// drain waits for in-flight workers up to the grace period.
func (uc *ConsumerUseCase) drain(pool *errgroup.Group) error {
	uc.setState(ConsumerStateStopping)
	if uc.logger != nil {
		uc.logger.Info("draining stream consumer",
			slog.Int64("in_flight", uc.inFlight.Load()),
			slog.Duration("grace_period", uc.config.StopGracePeriod),
		)
	}

	done := make(chan struct{})
	go func() {
		_ = pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(uc.config.StopGracePeriod):
		if uc.logger != nil {
			uc.logger.Warn("grace period elapsed with workers still in flight",
				slog.Int64("in_flight", uc.inFlight.Load()),
			)
		}
	}

	uc.setState(ConsumerStateStopped)
	if uc.logger != nil {
		uc.logger.Info("stream consumer stopped")
	}
	return nil
}

// handleMessage processes one message end to end and decides acknowledgement.
// Unparseable messages and unexpected processing errors are acknowledged (the
// message itself cannot succeed on redelivery); only critical resolution
// failures withhold the ack so the event stays claimable.
func (uc *ConsumerUseCase) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	event, err := domain.ParseStreamEvent(msg.Values)
	if err != nil {
		uc.metrics.RecordMessage(ctx, metrics.MessageOutcomeParseError)
		if uc.logger != nil {
			uc.logger.Warn("acking unparseable message",
				slog.String("message_id", msg.ID),
				slog.Any("error", err),
			)
		}
		uc.ack(ctx, msg.ID)
		return
	}

	err = uc.dispatcher.Dispatch(ctx, event)
	switch {
	case err == nil:
		uc.metrics.RecordMessage(ctx, metrics.MessageOutcomeAcked)
		uc.ack(ctx, msg.ID)
	case domain.IsCritical(err):
		uc.metrics.RecordMessage(ctx, metrics.MessageOutcomeCritical)
		if uc.logger != nil {
			uc.logger.Error("withholding ack after critical failure",
				slog.String("message_id", msg.ID),
				slog.String("order_id", event.OrderID),
				slog.Any("error", err),
			)
		}
	default:
		uc.metrics.RecordMessage(ctx, metrics.MessageOutcomeError)
		if uc.logger != nil {
			uc.logger.Error("acking message after processing error",
				slog.String("message_id", msg.ID),
				slog.String("order_id", event.OrderID),
				slog.Any("error", err),
			)
		}
		uc.ack(ctx, msg.ID)
	}
}

// ack acknowledges one message, logging failures.
func (uc *ConsumerUseCase) ack(ctx context.Context, id string) {
	if err := uc.streamRepo.Ack(ctx, id); err != nil && uc.logger != nil {
		uc.logger.Error("failed to ack message",
			slog.String("message_id", id),
			slog.Any("error", err),
		)
	}
}

// sleep waits for the duration or until the context is canceled.
func (uc *ConsumerUseCase) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// State returns the current consumer state.
func (uc *ConsumerUseCase) State() ConsumerState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state
}

// InFlight returns the number of messages currently being processed.
func (uc *ConsumerUseCase) InFlight() int64 {
	return uc.inFlight.Load()
}

// setState updates the consumer state and exposes it on the state gauge.
func (uc *ConsumerUseCase) setState(state ConsumerState) {
	uc.mu.Lock()
	uc.state = state
	uc.mu.Unlock()
	uc.metrics.RecordConsumerState(context.Background(), string(state))
}
