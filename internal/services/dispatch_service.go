package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/poofware/logistics-gateway/internal/constants"
	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/models"
	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// DispatchService turns validated partner requests into queued jobs and
// acknowledges them synchronously. Requests must be validated before they
// get here.
type DispatchService interface {
	IssueInvoice(ctx context.Context, partner *models.Partner, req *dtos.InvoiceIssueRequest) (*dtos.ResponseState, error)
	CreateInbound(ctx context.Context, partner *models.Partner, req *dtos.InboundTransferRequest) (*dtos.ResponseState, error)
	CreateOutbound(ctx context.Context, partner *models.Partner, req *dtos.OutboundTransferRequest) (*dtos.ResponseState, error)
}

type dispatchService struct {
	queue repositories.JobQueueRepository
}

func NewDispatchService(queue repositories.JobQueueRepository) DispatchService {
	return &dispatchService{queue: queue}
}

func (s *dispatchService) IssueInvoice(
	ctx context.Context,
	partner *models.Partner,
	req *dtos.InvoiceIssueRequest,
) (*dtos.ResponseState, error) {
	id, err := s.dispatch(ctx, partner, constants.QueueInvoice, constants.ActorIssueInvoice, req)
	if err != nil {
		return nil, err
	}
	return &dtos.ResponseState{UUID: id, State: constants.StateEnqueued}, nil
}

func (s *dispatchService) CreateInbound(
	ctx context.Context,
	partner *models.Partner,
	req *dtos.InboundTransferRequest,
) (*dtos.ResponseState, error) {
	id, err := s.dispatch(ctx, partner, constants.QueueInbound, constants.ActorCreateInboundOrder, req)
	if err != nil {
		return nil, err
	}
	return &dtos.ResponseState{
		UUID:    id,
		State:   constants.StateAccepted,
		Message: constants.MsgInboundOrderEnqueued,
	}, nil
}

func (s *dispatchService) CreateOutbound(
	ctx context.Context,
	partner *models.Partner,
	req *dtos.OutboundTransferRequest,
) (*dtos.ResponseState, error) {
	id, err := s.dispatch(ctx, partner, constants.QueueOutbound, constants.ActorCreateOutboundOrder, req)
	if err != nil {
		return nil, err
	}
	return &dtos.ResponseState{
		UUID:    id,
		State:   constants.StateAccepted,
		Message: constants.MsgOutboundOrderEnqueued,
	}, nil
}

// dispatch assigns the request id, embeds it with the partner id into the
// request fields and pushes one envelope. Nothing is rolled back on failure.
func (s *dispatchService) dispatch(
	ctx context.Context,
	partner *models.Partner,
	queueName string,
	actorName string,
	req any,
) (uuid.UUID, error) {
	requestID := uuid.New()

	kwargs, err := requestKwargs(req)
	if err != nil {
		return uuid.Nil, requestFailed(err)
	}
	kwargs["uuid"] = requestID.String()
	kwargs["partner_id"] = partner.PartnerID

	env, err := s.queue.Push(ctx, queueName, actorName, kwargs)
	if err != nil {
		return uuid.Nil, requestFailed(err)
	}

	utils.Logger.WithFields(logrus.Fields{
		"uuid":       requestID,
		"partner_id": partner.PartnerID,
		"queue":      queueName,
		"actor":      actorName,
		"message_id": env.MessageID,
	}).Info("Request enqueued")
	return requestID, nil
}

// requestKwargs flattens a request DTO into the kwargs map using its JSON
// field names.
func requestKwargs(req any) (map[string]any, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	kwargs := map[string]any{}
	if err := json.Unmarshal(raw, &kwargs); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return kwargs, nil
}

// requestFailed wraps a dispatch failure as the 422 callers see.
func requestFailed(err error) error {
	cause := err.Error()
	switch {
	case errors.Is(err, repositories.ErrQueueUnavailable):
		cause = "queue unavailable"
	case errors.Is(err, repositories.ErrStoreUnavailable):
		cause = "state store unavailable"
	}
	return &utils.AppError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       utils.ErrCodeRequestFailed,
		Message:    "Cannot process request: " + cause,
		Err:        err,
	}
}
