package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poofware/logistics-gateway/internal/models"
)

const tracerName = "github.com/poofware/logistics-gateway/internal/repositories"

// JobQueueRepository pushes envelopes onto dramatiq-compatible Redis queues.
//
// Each queue is a list of message ids ({ns}:{queue}) plus a hash of bodies
// keyed by the same id ({ns}:{queue}.msgs). Consumers pop ids from the head
// of the list and fetch-and-remove the body from the hash.
type JobQueueRepository interface {
	// Push stores the envelope body and appends its id to the queue. Once it
	// returns nil the envelope is durable and its body is addressable.
	Push(ctx context.Context, queueName, actorName string, kwargs map[string]any) (*models.JobEnvelope, error)

	// Depth reports how many ids are waiting in the queue.
	Depth(ctx context.Context, queueName string) (int64, error)
}

type redisJobQueueRepo struct {
	client    redis.Cmdable
	namespace string
	now       func() time.Time
}

// NewRedisJobQueueRepository pushes envelopes under the given dramatiq namespace.
func NewRedisJobQueueRepository(client redis.Cmdable, namespace string) JobQueueRepository {
	return &redisJobQueueRepo{
		client:    client,
		namespace: namespace,
		now:       time.Now,
	}
}

func (r *redisJobQueueRepo) Push(
	ctx context.Context,
	queueName string,
	actorName string,
	kwargs map[string]any,
) (*models.JobEnvelope, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "queue.push", trace.WithAttributes(
		attribute.String("queue.name", queueName),
		attribute.String("queue.actor", actorName),
	))
	defer span.End()

	env := models.NewJobEnvelope(queueName, actorName, kwargs, r.now())
	span.SetAttributes(attribute.String("queue.message_id", env.MessageID.String()))

	body, err := json.Marshal(env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode envelope")
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	// MULTI/EXEC: the body lands in the hash no later than the id lands in
	// the list, so a consumer popping the id always finds the body.
	id := env.Options.RedisMessageID.String()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, queueHashKey(r.namespace, queueName), id, body)
		pipe.RPush(ctx, queueListKey(r.namespace, queueName), id)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "push envelope")
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	return env, nil
}

func (r *redisJobQueueRepo) Depth(ctx context.Context, queueName string) (int64, error) {
	n, err := r.client.LLen(ctx, queueListKey(r.namespace, queueName)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return n, nil
}
