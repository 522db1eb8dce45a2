package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	apperrors "github.com/mapan1908/notification-service/internal/errors"
)

// RedisHealthRepository stores the order API health flag with a TTL so a
// crashed prober degrades the flag to "unknown" instead of leaving a stale
// "healthy" forever.
type RedisHealthRepository struct {
	client *redis.Client
	key    string
}

// NewRedisHealthRepository creates a RedisHealthRepository for the named
// dependency (e.g. "order-api").
func NewRedisHealthRepository(client *redis.Client, dependency string) *RedisHealthRepository {
	return &RedisHealthRepository{
		client: client,
		key:    "health:" + dependency,
	}
}

// Set writes the health flag with the given TTL.
func (r *RedisHealthRepository) Set(ctx context.Context, healthy bool, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key, strconv.FormatBool(healthy), ttl).Err(); err != nil {
		return apperrors.Wrap(err, "failed to write health flag")
	}
	return nil
}

// Get reads the health flag. The second return value reports whether the
// flag was present; an expired or never-written flag yields found=false.
func (r *RedisHealthRepository) Get(ctx context.Context) (healthy bool, found bool, err error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, false, nil
		}
		return false, false, apperrors.Wrap(err, "failed to read health flag")
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed health flag: "+raw)
	}
	return value, true, nil
}
