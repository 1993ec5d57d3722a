package jobs

import (
	"context"
	"log/slog"

	"fooddelivery/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// BroadcastExpiryJob marks dispatch offers whose deadline has passed as expired.
// Claims and status reads already treat such offers as expired; the sweep keeps
// the stored outcome in line with that.
type BroadcastExpiryJob struct {
	handler  commands.ExpireBroadcastsCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewBroadcastExpiryJob runs the sweep on schedule, a six-field cron spec with
// seconds. An empty schedule means every second.
func NewBroadcastExpiryJob(handler commands.ExpireBroadcastsCommandHandler, schedule string, logger *slog.Logger) *BroadcastExpiryJob {
	if schedule == "" {
		schedule = "* * * * * *"
	}
	return &BroadcastExpiryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "broadcast_expiry_job"),
	}
}

func (j *BroadcastExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Broadcast expiry job started", "schedule", j.schedule)
	return nil
}

func (j *BroadcastExpiryJob) run(ctx context.Context) int {
	expired, err := j.handler.Handle(ctx, commands.NewExpireBroadcastsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Broadcast expiry job failed", "error", err)
		return 0
	}
	return expired
}

// Stop stops scheduling and waits for a running sweep to finish.
func (j *BroadcastExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Broadcast expiry job stopped")
}
