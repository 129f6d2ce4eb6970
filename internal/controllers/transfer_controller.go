package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

type TransferController struct {
	dispatchService services.DispatchService
	stateService    services.StateService
}

func NewTransferController(dispatch services.DispatchService, state services.StateService) *TransferController {
	return &TransferController{dispatchService: dispatch, stateService: state}
}

func (c *TransferController) CreateInbound(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req dtos.InboundTransferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ack, err := c.dispatchService.CreateInbound(r.Context(), identity.Partner, &req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}

func (c *TransferController) CreateOutbound(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req dtos.OutboundTransferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ack, err := c.dispatchService.CreateOutbound(r.Context(), identity.Partner, &req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}

func (c *TransferController) State(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req dtos.JobStateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := c.stateService.ResolveTransferState(r.Context(), identity.Partner, uuid.MustParse(req.UUID))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, state)
}
