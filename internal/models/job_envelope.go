package models

import (
	"time"

	"github.com/google/uuid"
)

// JobEnvelope is a unit of work pushed onto a Redis-backed dramatiq queue.
// The JSON encoding is the wire format external workers decode.
type JobEnvelope struct {
	QueueName        string         `json:"queue_name"`
	ActorName        string         `json:"actor_name"`
	Args             []any          `json:"args"`
	Kwargs           map[string]any `json:"kwargs"`
	Options          JobOptions     `json:"options"`
	MessageID        uuid.UUID      `json:"message_id"`
	MessageTimestamp int64          `json:"message_timestamp"`
}

// JobOptions holds the broker-level options. RedisMessageID is the hash field
// and list entry identifying the envelope inside the queue.
type JobOptions struct {
	RedisMessageID uuid.UUID `json:"redis_message_id"`
}

// NewJobEnvelope builds an envelope with a fresh message id. Args is always
// empty; all job input travels in kwargs.
func NewJobEnvelope(queueName, actorName string, kwargs map[string]any, now time.Time) *JobEnvelope {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	id := uuid.New()
	return &JobEnvelope{
		QueueName:        queueName,
		ActorName:        actorName,
		Args:             []any{},
		Kwargs:           kwargs,
		Options:          JobOptions{RedisMessageID: id},
		MessageID:        id,
		MessageTimestamp: now.Unix(),
	}
}

// EnqueuedAt is message_timestamp as a time.
func (e *JobEnvelope) EnqueuedAt() time.Time {
	return time.Unix(e.MessageTimestamp, 0)
}
