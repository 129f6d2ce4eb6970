package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

type InvoiceController struct {
	dispatchService services.DispatchService
	stateService    services.StateService
}

func NewInvoiceController(dispatch services.DispatchService, state services.StateService) *InvoiceController {
	return &InvoiceController{dispatchService: dispatch, stateService: state}
}

func (c *InvoiceController) Issue(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req dtos.InvoiceIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ack, err := c.dispatchService.IssueInvoice(r.Context(), identity.Partner, &req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}

// Actual returns the partner's open invoices if a worker has prepared them,
// otherwise it asks for them and acknowledges.
func (c *InvoiceController) Actual(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}

	list, pending, err := c.stateService.ResolveActualInvoices(r.Context(), identity.Partner)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if pending != nil {
		utils.RespondWithJSON(w, http.StatusOK, pending)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

func (c *InvoiceController) State(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req dtos.JobStateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	state, err := c.stateService.ResolveInvoiceState(r.Context(), identity.Partner, uuid.MustParse(req.UUID))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, state)
}
