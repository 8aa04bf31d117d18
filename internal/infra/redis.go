package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisAttemptStore counts rate-limited attempts in redis so every instance
// behind a load balancer shares one budget per client.
type RedisAttemptStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisAttemptStore(rdb redis.Cmdable) *RedisAttemptStore {
	return &RedisAttemptStore{rdb: rdb, prefix: "ratelimit:"}
}

// Hit increments the counter for key and returns the new count. The window
// starts with the first hit.
func (s *RedisAttemptStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := s.prefix + key
	n, err := s.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.rdb.Expire(ctx, k, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
