package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poofware/logistics-gateway/internal/constants"
)

func TestQueueMonitorSnapshot(t *testing.T) {
	env := newTestEnv(t)
	svc := NewQueueMonitorService(env.queue, constants.KnownQueues)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := env.queue.Push(ctx, constants.QueueInbound, constants.ActorCreateInboundOrder, nil)
		require.NoError(t, err)
	}
	_, err := env.queue.Push(ctx, constants.QueueInvoice, constants.ActorIssueInvoice, nil)
	require.NoError(t, err)

	depths, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{
		"invoice":  1,
		"inbound":  2,
		"outbound": 0,
		"other":    0,
	}, depths)

	svc.LogDepths(ctx)
}

func TestQueueMonitorStoreDown(t *testing.T) {
	env := newTestEnv(t)
	svc := NewQueueMonitorService(env.queue, constants.KnownQueues)
	env.mr.Close()

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	svc.LogDepths(context.Background())
}
