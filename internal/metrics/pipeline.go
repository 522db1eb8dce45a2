package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Message outcomes recorded by the stream consumer.
const (
	MessageOutcomeAcked      = "acked"
	MessageOutcomeCritical   = "critical"
	MessageOutcomeParseError = "parse_error"
	MessageOutcomeError      = "error"
)

// PipelineMetrics defines the interface for recording pipeline metrics.
// Implementations track message outcomes, order resolution attempts and
// per-channel delivery attempts with durations.
type PipelineMetrics interface {
	// RecordMessage records the terminal outcome of one stream message.
	// Outcome is one of the MessageOutcome* constants.
	RecordMessage(ctx context.Context, outcome string)

	// RecordResolverAttempt records one order resolution result.
	// Result examples: "cache_hit", "api_success", "retryable", "definitive",
	// "stale", "unhealthy".
	RecordResolverAttempt(ctx context.Context, result string)

	// RecordDeliveryAttempt records one per-channel delivery attempt with its
	// status ("success", "failed" or "skipped") and duration.
	RecordDeliveryAttempt(ctx context.Context, channelType, status string, duration time.Duration)

	// RecordConsumerState records the consumer's current state as a gauge.
	RecordConsumerState(ctx context.Context, state string)
}

// consumerStateValues encodes consumer states as gauge values.
var consumerStateValues = map[string]int64{
	"stopped":          0,
	"running":          1,
	"paused_unhealthy": 2,
	"paused_saturated": 3,
	"stopping":         4,
}

// pipelineMetrics implements PipelineMetrics using OpenTelemetry metrics.
type pipelineMetrics struct {
	messageCounter   metric.Int64Counter
	resolverCounter  metric.Int64Counter
	deliveryCounter  metric.Int64Counter
	deliveryDuration metric.Float64Histogram
	consumerState    metric.Int64Gauge
}

// NewPipelineMetrics creates a PipelineMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names (e.g., "notifications").
// Returns error if meters cannot be initialized.
func NewPipelineMetrics(meterProvider metric.MeterProvider, namespace string) (PipelineMetrics, error) {
	meter := meterProvider.Meter(namespace)

	messageCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_messages_total", namespace),
		metric.WithDescription("Total number of stream messages by terminal outcome"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message counter: %w", err)
	}

	resolverCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_resolver_attempts_total", namespace),
		metric.WithDescription("Total number of order resolution attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver counter: %w", err)
	}

	deliveryCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_delivery_attempts_total", namespace),
		metric.WithDescription("Total number of channel delivery attempts by status"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	deliveryDuration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_delivery_duration_seconds", namespace),
		metric.WithDescription("Duration of channel delivery attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery duration histogram: %w", err)
	}

	consumerState, err := meter.Int64Gauge(
		fmt.Sprintf("%s_consumer_state", namespace),
		metric.WithDescription("Current consumer state (stopped=0, running=1, paused_unhealthy=2, paused_saturated=3, stopping=4)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer state gauge: %w", err)
	}

	return &pipelineMetrics{
		messageCounter:   messageCounter,
		resolverCounter:  resolverCounter,
		deliveryCounter:  deliveryCounter,
		deliveryDuration: deliveryDuration,
		consumerState:    consumerState,
	}, nil
}

// RecordMessage increments the message counter with the outcome label.
func (p *pipelineMetrics) RecordMessage(ctx context.Context, outcome string) {
	p.messageCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("outcome", outcome),
		),
	)
}

// RecordResolverAttempt increments the resolver counter with the result label.
func (p *pipelineMetrics) RecordResolverAttempt(ctx context.Context, result string) {
	p.resolverCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("result", result),
		),
	)
}

// RecordDeliveryAttempt increments the delivery counter and records the duration
// with channel_type and status labels.
func (p *pipelineMetrics) RecordDeliveryAttempt(
	ctx context.Context,
	channelType, status string,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("channel_type", channelType),
		attribute.String("status", status),
	)
	p.deliveryCounter.Add(ctx, 1, attrs)
	p.deliveryDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordConsumerState records the state's encoded value on the gauge.
// Unknown states record -1.
func (p *pipelineMetrics) RecordConsumerState(ctx context.Context, state string) {
	value, ok := consumerStateValues[state]
	if !ok {
		value = -1
	}
	p.consumerState.Record(ctx, value)
}

// NoOpPipelineMetrics is a no-op implementation of PipelineMetrics for when metrics are disabled.
type NoOpPipelineMetrics struct{}

// NewNoOpPipelineMetrics creates a no-op PipelineMetrics implementation.
func NewNoOpPipelineMetrics() PipelineMetrics {
	return &NoOpPipelineMetrics{}
}

// RecordMessage does nothing when metrics are disabled.
func (n *NoOpPipelineMetrics) RecordMessage(ctx context.Context, outcome string) {
	// No-op
}

// RecordResolverAttempt does nothing when metrics are disabled.
func (n *NoOpPipelineMetrics) RecordResolverAttempt(ctx context.Context, result string) {
	// No-op
}

// RecordDeliveryAttempt does nothing when metrics are disabled.
func (n *NoOpPipelineMetrics) RecordDeliveryAttempt(
	ctx context.Context,
	channelType, status string,
	duration time.Duration,
) {
	// No-op
}

// RecordConsumerState does nothing when metrics are disabled.
func (n *NoOpPipelineMetrics) RecordConsumerState(ctx context.Context, state string) {
	// No-op
}
