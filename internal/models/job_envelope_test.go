package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJobEnvelopeWireFormat(t *testing.T) {
	now := time.Unix(1704412800, 0)
	env := NewJobEnvelope("inbound", "create_inbound_order", map[string]any{"reference": "PO-1"}, now)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Equal(t, "inbound", decoded["queue_name"])
	require.Equal(t, "create_inbound_order", decoded["actor_name"])
	require.Equal(t, []any{}, decoded["args"])
	require.Equal(t, map[string]any{"reference": "PO-1"}, decoded["kwargs"])
	require.Equal(t, env.MessageID.String(), decoded["message_id"])
	require.Equal(t, float64(1704412800), decoded["message_timestamp"])

	opts, ok := decoded["options"].(map[string]any)
	require.True(t, ok, "options must be an object")
	require.Equal(t, env.MessageID.String(), opts["redis_message_id"])
	require.Equal(t, now, env.EnqueuedAt())
}

func TestNewJobEnvelopeNilKwargsEncodesAsObject(t *testing.T) {
	env := NewJobEnvelope("other", "transfer_state", nil, time.Now())
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"kwargs":{}`)
	require.Contains(t, string(raw), `"args":[]`)
}

func TestNewJobEnvelopeMessageIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		env := NewJobEnvelope("invoice", "issue_invoice", nil, time.Now())
		_, dup := seen[env.MessageID.String()]
		require.False(t, dup, "message id reused")
		seen[env.MessageID.String()] = struct{}{}
	}
}
