// Package domain defines the core notification domain entities and types.
package domain

import (
	"strconv"
	"time"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
)

// OrderEventType represents a recognized order lifecycle state.
type OrderEventType string

const (
	OrderCreated   OrderEventType = "order_created"
	OrderPaid      OrderEventType = "order_paid"
	OrderConfirmed OrderEventType = "order_confirmed"
	OrderReady     OrderEventType = "order_ready"
	OrderCompleted OrderEventType = "order_completed"
	OrderCanceled  OrderEventType = "order_canceled"
	OrderRefunded  OrderEventType = "order_refunded"
)

// Valid reports whether the event type is a recognized lifecycle state.
func (t OrderEventType) Valid() bool {
	switch t {
	case OrderCreated, OrderPaid, OrderConfirmed, OrderReady,
		OrderCompleted, OrderCanceled, OrderRefunded:
		return true
	}
	return false
}

// StreamMessage is one raw entry read from the event log, identified by the
// log-assigned message id used for acknowledgement.
type StreamMessage struct {
	ID     string
	Values map[string]interface{}
}

// StreamEvent is a parsed order lifecycle event produced externally.
// Token is an optional bearer credential for the order API; Timestamp is the
// event creation instant in epoch milliseconds.
type StreamEvent struct {
	OrderID   string
	StoreCode string
	Event     OrderEventType
	Token     string
	Timestamp int64
}

// Age returns how old the event is relative to now.
func (e *StreamEvent) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}

// ParseStreamEvent parses raw stream field values into a StreamEvent.
// A message missing any required field, or carrying an unrecognized event
// type, is unparseable and must be acknowledged without processing; such
// messages yield an error wrapping ErrInvalidInput.
func ParseStreamEvent(values map[string]interface{}) (*StreamEvent, error) {
	orderID := stringField(values, "orderId")
	if orderID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "missing orderId")
	}

	storeCode := stringField(values, "storeCode")
	if storeCode == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "missing storeCode")
	}

	eventType := OrderEventType(stringField(values, "event"))
	if eventType == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "missing event")
	}
	if !eventType.Valid() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "unrecognized event type "+string(eventType))
	}

	timestamp, ok := intField(values, "timestamp")
	if !ok || timestamp <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "missing or invalid timestamp")
	}

	return &StreamEvent{
		OrderID:   orderID,
		StoreCode: storeCode,
		Event:     eventType,
		Token:     stringField(values, "token"),
		Timestamp: timestamp,
	}, nil
}

// stringField extracts a string value from the raw field map.
func stringField(values map[string]interface{}, key string) string {
	v, ok := values[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// intField extracts an integer value from the raw field map. Stream values
// arrive as strings on the wire; numeric types are accepted for convenience.
func intField(values map[string]interface{}, key string) (int64, bool) {
	v, ok := values[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
