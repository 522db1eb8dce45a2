// Package channel implements the delivery strategies that turn a resolved
// order event into an outbound notification on one concrete channel.
package channel

import (
	"context"
	"fmt"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// Payload carries everything a strategy needs to deliver one notification.
type Payload struct {
	// Event is the parsed lifecycle event being notified.
	Event *domain.StreamEvent
	// Order is the resolved order snapshot.
	Order *domain.OrderInfo
	// Config is the merchant's channel configuration row, including the
	// opaque per-channel payload.
	Config *domain.ChannelConfig
}

// SendResult captures the outcome of one delivery call for auditing. A
// strategy returns a result even when it also returns an error, so the
// request and response snapshots survive into the audit log.
type SendResult struct {
	// MessageID is the provider-assigned message identifier, when one exists.
	MessageID string
	// RequestSnapshot is the serialized outbound request body.
	RequestSnapshot string
	// ResponseSnapshot is the raw provider response body.
	ResponseSnapshot string
}

// Strategy delivers notifications on one channel type. Implementations must
// be safe for concurrent use; one strategy instance serves all merchants.
type Strategy interface {
	// ChannelType identifies which channel this strategy serves.
	ChannelType() domain.ChannelType
	// Send delivers one notification. A non-nil error marks the attempt as
	// failed; the returned result (non-nil in either case) carries the
	// snapshots for the audit record.
	Send(ctx context.Context, payload Payload) (*SendResult, error)
}

// Registry maps channel types to their strategy implementations. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	strategies map[domain.ChannelType]Strategy
}

// NewRegistry creates a registry holding the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[domain.ChannelType]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.ChannelType()] = s
	}
	return r
}

// Resolve returns the strategy registered for the channel type.
func (r *Registry) Resolve(channelType domain.ChannelType) (Strategy, bool) {
	s, ok := r.strategies[channelType]
	return s, ok
}

// Types returns the registered channel types.
func (r *Registry) Types() []domain.ChannelType {
	types := make([]domain.ChannelType, 0, len(r.strategies))
	for t := range r.strategies {
		types = append(types, t)
	}
	return types
}

// eventLabel maps a lifecycle event to the human-readable wording used in
// outbound notifications.
func eventLabel(event domain.OrderEventType) string {
	switch event {
	case domain.OrderCreated:
		return "New order"
	case domain.OrderPaid:
		return "Order paid"
	case domain.OrderConfirmed:
		return "Order confirmed"
	case domain.OrderReady:
		return "Order ready"
	case domain.OrderCompleted:
		return "Order completed"
	case domain.OrderCanceled:
		return "Order canceled"
	case domain.OrderRefunded:
		return "Order refunded"
	}
	return string(event)
}

// formatAmount renders a cent amount as a decimal currency string. Negative
// amounts (refund adjustments) keep a single leading sign.
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
