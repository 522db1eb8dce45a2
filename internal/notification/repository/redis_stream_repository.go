// Package repository implements persistence for the notification pipeline:
// the Redis event stream, the shared order cache, the health flag store, the
// channel configuration store and the delivery audit log.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// RedisStreamRepository reads order lifecycle events from a Redis Stream
// under a named consumer group and acknowledges them by message id.
type RedisStreamRepository struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

// NewRedisStreamRepository creates a new RedisStreamRepository.
func NewRedisStreamRepository(client *redis.Client, stream, group, consumer string) *RedisStreamRepository {
	return &RedisStreamRepository{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
	}
}

// EnsureGroup creates the consumer group (and the stream, if absent).
// Creation is idempotent: an already-existing group is not an error.
func (r *RedisStreamRepository) EnsureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return apperrors.Wrap(err, "failed to create consumer group")
	}
	return nil
}

// ReadBatch reads up to count never-yet-delivered messages for this consumer,
// blocking up to the given timeout when none are available. Returns an empty
// slice when the block timeout elapses without messages.
func (r *RedisStreamRepository) ReadBatch(
	ctx context.Context,
	count int64,
	block time.Duration,
) ([]domain.StreamMessage, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to read from stream")
	}

	var messages []domain.StreamMessage
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			messages = append(messages, domain.StreamMessage{
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}
	return messages, nil
}

// Ack acknowledges the given message ids for the group. Acknowledged messages
// leave the pending list; unacknowledged ones stay claimable by redelivery
// tooling.
func (r *RedisStreamRepository) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.client.XAck(ctx, r.stream, r.group, ids...).Err(); err != nil {
		return apperrors.Wrap(err, "failed to ack messages")
	}
	return nil
}

// PendingCount returns the number of messages delivered to the group but not
// yet acknowledged.
func (r *RedisStreamRepository) PendingCount(ctx context.Context) (int64, error) {
	pending, err := r.client.XPending(ctx, r.stream, r.group).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, apperrors.Wrap(err, "failed to read pending summary")
	}
	return pending.Count, nil
}
