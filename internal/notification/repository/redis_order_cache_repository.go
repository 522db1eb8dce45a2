package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// orderCacheKeyPattern matches the key layout the upstream order service
// populates; this service never writes these keys.
const orderCacheKeyPattern = "order_info:%s:%s"

// RedisOrderCacheRepository reads denormalized order snapshots from the
// shared cache.
type RedisOrderCacheRepository struct {
	client *redis.Client
}

// NewRedisOrderCacheRepository creates a new RedisOrderCacheRepository.
func NewRedisOrderCacheRepository(client *redis.Client) *RedisOrderCacheRepository {
	return &RedisOrderCacheRepository{client: client}
}

// Get retrieves the cached order snapshot for (storeCode, orderID).
// Returns ErrNotFound on a cache miss and ErrInvalidInput when the entry
// cannot be decoded; the caller decides whether malformed entries matter.
func (r *RedisOrderCacheRepository) Get(
	ctx context.Context,
	storeCode, orderID string,
) (*domain.OrderInfo, error) {
	key := fmt.Sprintf(orderCacheKeyPattern, storeCode, orderID)

	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "order cache miss")
		}
		return nil, apperrors.Wrap(err, "failed to read order cache")
	}

	var info domain.OrderInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed order cache entry: "+err.Error())
	}

	return &info, nil
}
