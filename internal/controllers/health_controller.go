package controllers

import (
	"context"
	"net/http"

	"github.com/poofware/logistics-gateway/internal/dtos"
	"github.com/poofware/logistics-gateway/internal/services"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// PingFunc probes the backing store.
type PingFunc func(ctx context.Context) error

type HealthController struct {
	ping         PingFunc
	queueMonitor services.QueueMonitorService
}

func NewHealthController(ping PingFunc, queueMonitor services.QueueMonitorService) *HealthController {
	return &HealthController{ping: ping, queueMonitor: queueMonitor}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.ping(r.Context()); err != nil {
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Redis unreachable", nil, err)
		return
	}
	depths, err := c.queueMonitor.Snapshot(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeInternal, "Queues unreachable", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthResponse{Status: "OK", Queues: depths})
}
