package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/utils"
)

func TestTransferStateMissingEnqueuesEveryPoll(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()

	for poll := 1; poll <= 2; poll++ {
		ack, err := svc.ResolveTransferState(ctx, env.partner, id)
		require.NoError(t, err)
		require.Equal(t, id, ack.UUID)
		require.Equal(t, "enqueued", ack.State)
		require.Len(t, env.envelopes(t, "other"), poll)
	}

	envs := env.envelopes(t, "other")
	require.NotEqual(t, envs[0].MessageID, envs[1].MessageID)
	for _, e := range envs {
		require.Equal(t, "transfer_state", e.ActorName)
		require.Equal(t, map[string]any{"uuid": id.String(), "partner_id": float64(8)}, e.Kwargs)
	}
}

func TestTransferStateRecordIsReadOnce(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, env.states.Put(ctx, "transfer:"+id.String(), map[string]any{
		"uuid":       id.String(),
		"partner_id": 8,
		"state":      "done",
		"message":    "Received 3 of 3",
		"result":     map[string]any{"picking": "WH/IN/0001"},
	}, 0))

	got, err := svc.ResolveTransferState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, id, got.UUID)
	require.Equal(t, "done", got.State)
	require.Equal(t, "Received 3 of 3", got.Message)
	require.JSONEq(t, `{"picking":"WH/IN/0001"}`, string(got.Result))
	require.Empty(t, env.envelopes(t, "other"))

	again, err := svc.ResolveTransferState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, "enqueued", again.State)
	require.Len(t, env.envelopes(t, "other"), 1)
}

func TestInvoiceStateDefaults(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, env.states.Put(ctx, "invoice:"+id.String(), map[string]any{"partner_id": 8}, 0))

	got, err := svc.ResolveInvoiceState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, id, got.UUID)
	require.Equal(t, "resolved", got.State)

	got, err = svc.ResolveInvoiceState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, "enqueued", got.State)

	envs := env.envelopes(t, "invoice")
	require.Len(t, envs, 1)
	require.Equal(t, "invoice_state", envs[0].ActorName)
}

func TestActualInvoices(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()

	list, ack, err := svc.ResolveActualInvoices(ctx, env.partner)
	require.NoError(t, err)
	require.Nil(t, list)
	require.Equal(t, "enqueued", ack.State)
	require.NotEqual(t, uuid.Nil, ack.UUID)

	envs := env.envelopes(t, "invoice")
	require.Len(t, envs, 1)
	require.Equal(t, "actual_invoices", envs[0].ActorName)
	require.Equal(t, ack.UUID.String(), envs[0].Kwargs["uuid"])
	require.EqualValues(t, 8, envs[0].Kwargs["partner_id"])

	invoiceID := uuid.New()
	require.NoError(t, env.states.Put(ctx, "actual_invoices:8", map[string]any{
		"actual_invoices": []map[string]any{{
			"uuid":          invoiceID.String(),
			"reference":     "INV/2024/0001",
			"issue_date":    "2024-01-31",
			"deadline_date": "2024-02-14",
			"requisites":    map[string]any{"signer_name": "J. Doe", "company_name": "ACME"},
			"invoice_lines": []map[string]any{{
				"default_code": "A1", "name": "Widget", "price": 9.99, "amount": 3, "tax": 0.2,
			}},
			"amount_total": 29.97,
			"amount_tax":   5.99,
		}},
	}, 0))

	list, ack, err = svc.ResolveActualInvoices(ctx, env.partner)
	require.NoError(t, err)
	require.Nil(t, ack)
	require.Len(t, list.ActualInvoices, 1)
	inv := list.ActualInvoices[0]
	require.Equal(t, invoiceID, inv.UUID)
	require.Equal(t, "ACME", inv.Requisites.CompanyName)
	require.Len(t, inv.InvoiceLines, 1)
	require.Equal(t, "A1", inv.InvoiceLines[0].DefaultCode)

	// Consumed.
	require.False(t, env.mr.Exists("actual_invoices:8"))
}

func TestStateRecordUndecodable(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)

	require.NoError(t, env.mr.Set("actual_invoices:8", "{not json"))

	_, _, err := svc.ResolveActualInvoices(context.Background(), env.partner)
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	require.False(t, env.mr.Exists("actual_invoices:8"))
}

func TestStateRecordOnlyReachesItsPartner(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()
	other := &models.Partner{Login: "acme", PartnerID: 99}

	require.NoError(t, env.states.Put(ctx, "transfer:"+id.String(), map[string]any{
		"uuid": id.String(), "partner_id": 8, "state": "done",
	}, 0))

	// The other partner is told to poll again and the record survives.
	ack, err := svc.ResolveTransferState(ctx, other, id)
	require.NoError(t, err)
	require.Equal(t, "enqueued", ack.State)
	require.True(t, env.mr.Exists("transfer:"+id.String()))
	envs := env.envelopes(t, "other")
	require.Len(t, envs, 1)
	require.EqualValues(t, 99, envs[0].Kwargs["partner_id"])

	got, err := svc.ResolveTransferState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, "done", got.State)
	require.False(t, env.mr.Exists("transfer:"+id.String()))
}

func TestStatePollDedupeIsPerPartner(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.LDFlag_StatePollDedupe = true
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()
	other := &models.Partner{Login: "acme", PartnerID: 99}

	_, err := svc.ResolveInvoiceState(ctx, other, id)
	require.NoError(t, err)
	_, err = svc.ResolveInvoiceState(ctx, env.partner, id)
	require.NoError(t, err)

	envs := env.envelopes(t, "invoice")
	require.Len(t, envs, 2)
	require.EqualValues(t, 99, envs[0].Kwargs["partner_id"])
	require.EqualValues(t, 8, envs[1].Kwargs["partner_id"])
}

func TestStateStoreDown(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)
	env.mr.Close()

	_, err := svc.ResolveInvoiceState(context.Background(), env.partner, uuid.New())
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, utils.ErrCodeRequestFailed, appErr.Code)
}

func TestStatePollDedupe(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.LDFlag_StatePollDedupe = true
	svc := NewStateService(env.cfg, env.states, env.queue)
	ctx := context.Background()
	id := uuid.New()

	for i := 0; i < 3; i++ {
		ack, err := svc.ResolveTransferState(ctx, env.partner, id)
		require.NoError(t, err)
		require.Equal(t, "enqueued", ack.State)
	}
	require.Len(t, env.envelopes(t, "other"), 1)

	// Marker expiry lets a fresh job through.
	env.mr.FastForward(31 * time.Second)
	_, err := svc.ResolveTransferState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Len(t, env.envelopes(t, "other"), 2)

	// Consuming the record clears the marker.
	require.NoError(t, env.states.Put(ctx, "transfer:"+id.String(), map[string]any{"state": "done", "partner_id": 8}, 0))
	got, err := svc.ResolveTransferState(ctx, env.partner, id)
	require.NoError(t, err)
	require.Equal(t, "done", got.State)
	require.False(t, env.mr.Exists("state_poll:transfer:"+id.String()+":8"))
}

func TestResolveRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	env := newTestEnv(t)
	svc := NewStateService(env.cfg, env.states, env.queue)

	_, err := svc.ResolveTransferState(context.Background(), env.partner, uuid.New())
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	require.ElementsMatch(t, []string{"queue.push", "state.resolve"}, names)
}
