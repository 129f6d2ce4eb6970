package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poofware/logistics-gateway/internal/models"
)

// StateRepository holds one-time result records written by workers.
type StateRepository interface {
	// Take atomically reads and deletes the record under key. It returns
	// nil, nil when no record is present.
	Take(ctx context.Context, key string) (*models.StateRecord, error)

	// TakeOwned is Take for records that carry the partner_id of the partner
	// they were produced for. A record with another (or no) partner_id is
	// left untouched and ErrRecordNotOwned is returned.
	TakeOwned(ctx context.Context, key string, partnerID int) (*models.StateRecord, error)

	// Put writes a record. Workers do this in production; the gateway only
	// uses it for fixtures.
	Put(ctx context.Context, key string, payload any, ttl time.Duration) error

	// MarkPollInFlight sets the poll marker for key if absent and reports
	// whether this call set it.
	MarkPollInFlight(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// ClearPollMarker removes the poll marker for key.
	ClearPollMarker(ctx context.Context, key string) error
}

// takeOwnedScript deletes the record only when its partner_id matches
// ARGV[1]. It returns the raw record, 0 on a mismatch, or nil when absent.
var takeOwnedScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return false
end
local ok, rec = pcall(cjson.decode, raw)
if not ok or type(rec) ~= 'table' or tonumber(rec['partner_id']) ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
return raw
`)

type redisStateRepo struct {
	client redis.Cmdable
}

// NewRedisStateRepository reads records as JSON strings under their keys.
func NewRedisStateRepository(client redis.Cmdable) StateRepository {
	return &redisStateRepo{client: client}
}

func (r *redisStateRepo) Take(ctx context.Context, key string) (*models.StateRecord, error) {
	raw, err := r.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: take %s: %v", ErrStoreUnavailable, key, err)
	}
	return &models.StateRecord{Key: key, Payload: json.RawMessage(raw)}, nil
}

func (r *redisStateRepo) TakeOwned(ctx context.Context, key string, partnerID int) (*models.StateRecord, error) {
	res, err := takeOwnedScript.Run(ctx, r.client, []string{key}, partnerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: take %s: %v", ErrStoreUnavailable, key, err)
	}
	raw, ok := res.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotOwned, key)
	}
	return &models.StateRecord{Key: key, Payload: json.RawMessage(raw)}, nil
}

func (r *redisStateRepo) Put(ctx context.Context, key string, payload any, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}

func (r *redisStateRepo) MarkPollInFlight(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	set, err := r.client.SetNX(ctx, statePollKey(key), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: mark poll %s: %v", ErrStoreUnavailable, key, err)
	}
	return set, nil
}

func (r *redisStateRepo) ClearPollMarker(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, statePollKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: clear poll %s: %v", ErrStoreUnavailable, key, err)
	}
	return nil
}
