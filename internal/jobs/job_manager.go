package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"fooddelivery/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	broadcastExpiryJob *BroadcastExpiryJob
	limiterPruneJob    *LimiterPruneJob
}

// NewJobManager wires the jobs. A nil pruner disables limiter pruning.
func NewJobManager(
	expireHandler commands.ExpireBroadcastsCommandHandler,
	expirySchedule string,
	pruner Pruner,
	limiterIdle time.Duration,
	logger *slog.Logger,
) *JobManager {
	jm := &JobManager{
		broadcastExpiryJob: NewBroadcastExpiryJob(expireHandler, expirySchedule, logger),
	}
	if pruner != nil {
		jm.limiterPruneJob = NewLimiterPruneJob(pruner, limiterIdle, logger)
	}
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.broadcastExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start broadcast expiry job: %w", err)
	}

	if jm.limiterPruneJob != nil {
		if err := jm.limiterPruneJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.broadcastExpiryJob.Stop()
			return fmt.Errorf("failed to start limiter prune job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.limiterPruneJob != nil {
		jm.limiterPruneJob.Stop()
	}
	jm.broadcastExpiryJob.Stop()
}
