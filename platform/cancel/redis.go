package cancel

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"course_gen_backend/pkg/logging"
)

const keyPrefix = "cancel:"

// RedisRegistry shares cancel flags between instances. Lookups that fail are
// reported as not canceled.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(rdb *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: ttl}
}

func (r *RedisRegistry) MarkCanceled(ctx context.Context, requestID string) error {
	return r.rdb.Set(ctx, keyPrefix+requestID, "1", r.ttl).Err()
}

func (r *RedisRegistry) IsCanceled(ctx context.Context, requestID string) bool {
	n, err := r.rdb.Exists(ctx, keyPrefix+requestID).Result()
	if err != nil {
		logging.Logger.Error("fail IsCanceled", "requestId", requestID, "error", err)
		return false
	}
	return n > 0
}

func (r *RedisRegistry) Clear(ctx context.Context, requestID string) error {
	return r.rdb.Del(ctx, keyPrefix+requestID).Err()
}
