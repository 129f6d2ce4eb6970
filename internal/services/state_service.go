package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poofware/logistics-gateway/internal/config"
	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

const tracerName = "github.com/poofware/logistics-gateway/internal/services"

// StateService answers state polls. A ready record is handed out exactly
// once; otherwise a job asking the workers for the state is enqueued and the
// caller is told to poll again.
type StateService interface {
	ResolveTransferState(ctx context.Context, partner *models.Partner, requestID uuid.UUID) (*dtos.ResponseState, error)
	ResolveInvoiceState(ctx context.Context, partner *models.Partner, requestID uuid.UUID) (*dtos.ResponseState, error)

	// ResolveActualInvoices returns either the partner's invoice list or the
	// pending acknowledgement, never both.
	ResolveActualInvoices(ctx context.Context, partner *models.Partner) (*dtos.InvoiceList, *dtos.ResponseState, error)
}

type stateService struct {
	states    repositories.StateRepository
	queue     repositories.JobQueueRepository
	dedupe    bool
	markerTTL time.Duration
}

func NewStateService(
	cfg *config.Config,
	states repositories.StateRepository,
	queue repositories.JobQueueRepository,
) StateService {
	return &stateService{
		states:    states,
		queue:     queue,
		dedupe:    cfg.LDFlag_StatePollDedupe,
		markerTTL: cfg.StatePollMarkerTTL,
	}
}

// stateKind binds a record key to the job that asks workers to produce it.
// Records under a request_id key are owned: they carry the partner_id they
// were produced for and only that partner may take them.
type stateKind struct {
	key   string
	queue string
	actor string
	owned bool
}

func (s *stateService) ResolveTransferState(
	ctx context.Context,
	partner *models.Partner,
	requestID uuid.UUID,
) (*dtos.ResponseState, error) {
	kind := stateKind{
		key:   repositories.TransferStateKey(requestID.String()),
		queue: constants.QueueOther,
		actor: constants.ActorTransferState,
		owned: true,
	}
	return s.resolveJobState(ctx, partner, kind, requestID)
}

func (s *stateService) ResolveInvoiceState(
	ctx context.Context,
	partner *models.Partner,
	requestID uuid.UUID,
) (*dtos.ResponseState, error) {
	kind := stateKind{
		key:   repositories.InvoiceStateKey(requestID.String()),
		queue: constants.QueueInvoice,
		actor: constants.ActorInvoiceState,
		owned: true,
	}
	return s.resolveJobState(ctx, partner, kind, requestID)
}

func (s *stateService) ResolveActualInvoices(
	ctx context.Context,
	partner *models.Partner,
) (*dtos.InvoiceList, *dtos.ResponseState, error) {
	kind := stateKind{
		key:   repositories.ActualInvoicesKey(partner.PartnerID),
		queue: constants.QueueInvoice,
		actor: constants.ActorActualInvoices,
	}
	rec, pending, err := s.resolve(ctx, partner, kind, uuid.New())
	if err != nil || pending != nil {
		return nil, pending, err
	}

	var list dtos.InvoiceList
	if err := rec.Decode(&list); err != nil {
		return nil, nil, requestFailed(fmt.Errorf("decode %s: %w", rec.Key, err))
	}
	if list.ActualInvoices == nil {
		list.ActualInvoices = []dtos.Invoice{}
	}
	return &list, nil, nil
}

func (s *stateService) resolveJobState(
	ctx context.Context,
	partner *models.Partner,
	kind stateKind,
	requestID uuid.UUID,
) (*dtos.ResponseState, error) {
	rec, pending, err := s.resolve(ctx, partner, kind, requestID)
	if err != nil || pending != nil {
		return pending, err
	}

	var st dtos.ResponseState
	if err := rec.Decode(&st); err != nil {
		return nil, requestFailed(fmt.Errorf("decode %s: %w", rec.Key, err))
	}
	if st.UUID == uuid.Nil {
		st.UUID = requestID
	}
	if st.State == "" {
		st.State = constants.StateResolved
	}
	return &st, nil
}

// resolve consumes the record under kind.key. When there is none it pushes a
// state job carrying {uuid, partner_id} and returns the pending ack.
func (s *stateService) resolve(
	ctx context.Context,
	partner *models.Partner,
	kind stateKind,
	requestID uuid.UUID,
) (*models.StateRecord, *dtos.ResponseState, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "state.resolve", trace.WithAttributes(
		attribute.String("state.key", kind.key),
		attribute.String("state.actor", kind.actor),
	))
	defer span.End()

	fail := func(err error) (*models.StateRecord, *dtos.ResponseState, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, requestFailed(err)
	}

	// Owned keys are shared by every partner polling the same request_id, so
	// their poll marker is kept per partner.
	markerKey := kind.key
	if kind.owned {
		markerKey = fmt.Sprintf("%s:%d", kind.key, partner.PartnerID)
	}

	rec, err := s.take(ctx, partner, kind)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.Bool("state.found", rec != nil))

	if rec != nil {
		if s.dedupe {
			if err := s.states.ClearPollMarker(ctx, markerKey); err != nil {
				utils.Logger.WithError(err).Warnf("Failed to clear poll marker for %s", markerKey)
			}
		}
		return rec, nil, nil
	}

	pending := &dtos.ResponseState{UUID: requestID, State: constants.StateEnqueued}

	if s.dedupe {
		first, err := s.states.MarkPollInFlight(ctx, markerKey, s.markerTTL)
		switch {
		case err != nil:
			utils.Logger.WithError(err).Warnf("Poll marker unavailable for %s; enqueueing anyway", markerKey)
		case !first:
			span.SetAttributes(attribute.Bool("state.deduped", true))
			return nil, pending, nil
		}
	}

	kwargs := map[string]any{
		"uuid":       requestID.String(),
		"partner_id": partner.PartnerID,
	}
	if _, err := s.queue.Push(ctx, kind.queue, kind.actor, kwargs); err != nil {
		if s.dedupe {
			_ = s.states.ClearPollMarker(ctx, markerKey)
		}
		return fail(err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"uuid":       requestID,
		"partner_id": partner.PartnerID,
		"actor":      kind.actor,
	}).Debug("State not ready; state job enqueued")
	return nil, pending, nil
}

// take consumes the record under kind.key. Someone else's record reads as
// absent so a request_id never reveals whether it exists.
func (s *stateService) take(
	ctx context.Context,
	partner *models.Partner,
	kind stateKind,
) (*models.StateRecord, error) {
	if !kind.owned {
		return s.states.Take(ctx, kind.key)
	}
	rec, err := s.states.TakeOwned(ctx, kind.key, partner.PartnerID)
	if errors.Is(err, repositories.ErrRecordNotOwned) {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("state.foreign", true))
		utils.Logger.WithFields(logrus.Fields{
			"key":        kind.key,
			"partner_id": partner.PartnerID,
		}).Warn("State record not owned by polling partner; left in place")
		return nil, nil
	}
	return rec, err
}
