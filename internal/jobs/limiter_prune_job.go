package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner drops per-key state not used within idle.
type Pruner interface {
	Prune(idle time.Duration) int
}

// LimiterPruneJob keeps the delivery-code attempt limiter from growing with every
// order ever verified.
type LimiterPruneJob struct {
	pruner Pruner
	idle   time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

func NewLimiterPruneJob(pruner Pruner, idle time.Duration, logger *slog.Logger) *LimiterPruneJob {
	return &LimiterPruneJob{
		pruner: pruner,
		idle:   idle,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "limiter_prune_job"),
	}
}

// Start runs the prune at the top of every minute.
func (j *LimiterPruneJob) Start() error {
	if _, err := j.cron.AddFunc("0 * * * * *", func() { j.run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Limiter prune job started", "idle", j.idle)
	return nil
}

func (j *LimiterPruneJob) run(ctx context.Context) int {
	removed := j.pruner.Prune(j.idle)
	if removed > 0 {
		j.logger.DebugContext(ctx, "Pruned idle limiter keys", "count", removed)
	}
	return removed
}

func (j *LimiterPruneJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Limiter prune job stopped")
}
