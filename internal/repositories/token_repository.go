package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepository tracks revoked access tokens by their JTI. Entries expire
// together with the token they revoke.
type TokenRepository interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenRepo struct {
	client redis.Cmdable
}

// NewRedisTokenRepository records revoked token IDs until they would expire.
func NewRedisTokenRepository(client redis.Cmdable) TokenRepository {
	return &redisTokenRepo{client: client}
}

func (r *redisTokenRepo) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; nothing left to revoke.
		return nil
	}
	if err := r.client.Set(ctx, revokedTokenKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: blacklist token: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *redisTokenRepo) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: check token: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
