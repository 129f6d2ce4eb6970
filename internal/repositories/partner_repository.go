package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/poofware/logistics-gateway/internal/models"
)

// PartnerRepository is the credential store. GetByLogin returns nil, nil
// when the login is unknown.
type PartnerRepository interface {
	GetByLogin(ctx context.Context, login string) (*models.Partner, error)
	Create(ctx context.Context, partner *models.Partner) error
}

type redisPartnerRepo struct {
	client redis.Cmdable
}

// NewRedisPartnerRepository stores partners as JSON under partner:{login}.
func NewRedisPartnerRepository(client redis.Cmdable) PartnerRepository {
	return &redisPartnerRepo{client: client}
}

func (r *redisPartnerRepo) GetByLogin(ctx context.Context, login string) (*models.Partner, error) {
	raw, err := r.client.Get(ctx, partnerKey(login)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get partner: %v", ErrStoreUnavailable, err)
	}

	var p models.Partner
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode partner %q: %w", login, err)
	}
	return &p, nil
}

// Create is a no-op when the login already exists; credentials are
// immutable once provisioned.
func (r *redisPartnerRepo) Create(ctx context.Context, partner *models.Partner) error {
	raw, err := json.Marshal(partner)
	if err != nil {
		return err
	}
	if err := r.client.SetNX(ctx, partnerKey(partner.Login), raw, 0).Err(); err != nil {
		return fmt.Errorf("%w: create partner: %v", ErrStoreUnavailable, err)
	}
	return nil
}
