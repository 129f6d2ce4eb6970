package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/poofware/logistics-gateway/internal/repositories"
	"github.com/poofware/logistics-gateway/internal/utils"
)

// QueueMonitorService reports how much work is waiting for the workers.
type QueueMonitorService interface {
	// Snapshot returns the depth of every monitored queue.
	Snapshot(ctx context.Context) (map[string]int64, error)

	// LogDepths logs a snapshot. It is the body of the periodic cron job.
	LogDepths(ctx context.Context)
}

type queueMonitorService struct {
	queue  repositories.JobQueueRepository
	queues []string
}

func NewQueueMonitorService(queue repositories.JobQueueRepository, queues []string) QueueMonitorService {
	return &queueMonitorService{queue: queue, queues: queues}
}

func (s *queueMonitorService) Snapshot(ctx context.Context) (map[string]int64, error) {
	depths := make(map[string]int64, len(s.queues))
	for _, q := range s.queues {
		n, err := s.queue.Depth(ctx, q)
		if err != nil {
			return nil, err
		}
		depths[q] = n
	}
	return depths, nil
}

func (s *queueMonitorService) LogDepths(ctx context.Context) {
	depths, err := s.Snapshot(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Queue monitor failed to read queue depths")
		return
	}
	fields := logrus.Fields{}
	for q, n := range depths {
		fields["queue_"+q] = n
	}
	utils.Logger.WithFields(fields).Info("Queue depths")
}
