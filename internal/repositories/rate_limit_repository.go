package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository implements fixed-window counters.
type RateLimitRepository interface {
	// IncrementAndCheck bumps the counter for key and reports whether the
	// new value is still within limit for the current window.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type redisRateLimitRepo struct {
	client redis.Cmdable
}

// NewRedisRateLimitRepository keeps counters as plain Redis integers.
func NewRedisRateLimitRepository(client redis.Cmdable) RateLimitRepository {
	return &redisRateLimitRepo{client: client}
}

func (r *redisRateLimitRepo) IncrementAndCheck(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
) (bool, error) {
	var incr *redis.IntCmd
	// EXPIRE NX opens the window on the first hit and never extends it.
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: incr %s: %v", ErrStoreUnavailable, key, err)
	}
	return incr.Val() <= int64(limit), nil
}
