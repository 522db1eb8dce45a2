package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus is the terminal status of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusSuccess DeliveryStatus = "success"
	DeliveryStatusFailed  DeliveryStatus = "failed"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
)

// DeliveryAttempt is an append-only audit record: one per (message, channel)
// pair attempted, plus one per message-level skip or resolution failure
// (ChannelType empty for message-level records).
type DeliveryAttempt struct {
	ID               uuid.UUID
	OrderID          string
	StoreCode        string
	EventType        OrderEventType
	ChannelType      ChannelType
	Status           DeliveryStatus
	RequestSnapshot  string
	ResponseSnapshot string
	ErrorMessage     string
	DurationMs       int64
	RetryCount       int
	CreatedAt        time.Time
}
