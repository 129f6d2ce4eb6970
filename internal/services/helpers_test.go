package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

const (
	testLogin  = "johndoe"
	testSecret = "s3cret-pass"
)

type testEnv struct {
	mr       *miniredis.Miniredis
	client   *redis.Client
	cfg      *config.Config
	partners repositories.PartnerRepository
	tokens   repositories.TokenRepository
	states   repositories.StateRepository
	queue    repositories.JobQueueRepository
	partner  *models.Partner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		OrganizationName:   "Poof",
		JWTSecret:          []byte("0123456789abcdef0123456789abcdef"),
		AccessTokenExpiry:  5 * time.Minute,
		StatePollMarkerTTL: 30 * time.Second,
		MaxLoginAttempts:   3,
		LoginAttemptWindow: time.Minute,
	}

	hash, err := utils.HashPasswordWithCost(testSecret, bcrypt.MinCost)
	require.NoError(t, err)
	partner := &models.Partner{Login: testLogin, SecretHash: hash, PartnerID: 8}

	env := &testEnv{
		mr:       mr,
		client:   client,
		cfg:      cfg,
		partners: repositories.NewRedisPartnerRepository(client),
		tokens:   repositories.NewRedisTokenRepository(client),
		states:   repositories.NewRedisStateRepository(client),
		queue:    repositories.NewRedisJobQueueRepository(client, "dramatiq"),
		partner:  partner,
	}
	require.NoError(t, env.partners.Create(context.Background(), partner))
	return env
}

// envelopes decodes every envelope waiting in queue, in list order.
func (e *testEnv) envelopes(t *testing.T, queue string) []models.JobEnvelope {
	t.Helper()
	ctx := context.Background()
	ids, err := e.client.LRange(ctx, "dramatiq:"+queue, 0, -1).Result()
	require.NoError(t, err)

	out := make([]models.JobEnvelope, 0, len(ids))
	for _, id := range ids {
		raw, err := e.client.HGet(ctx, "dramatiq:"+queue+".msgs", id).Bytes()
		require.NoError(t, err)
		var env models.JobEnvelope
		require.NoError(t, json.Unmarshal(raw, &env))
		require.Equal(t, id, env.MessageID.String())
		out = append(out, env)
	}
	return out
}
