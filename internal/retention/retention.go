package retention

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	Interval   = 24 * time.Hour
	runTimeout = time.Minute
)

// Cleaner deletes audit entries older than the given number of days.
type Cleaner interface {
	CleanupAuditLogs(ctx context.Context, retentionDays int) (int64, error)
}

type Job struct {
	cleaner Cleaner
	days    int
	logger  *zap.Logger
}

func New(cleaner Cleaner, days int, logger *zap.Logger) *Job {
	return &Job{cleaner: cleaner, days: days, logger: logger}
}

// Run performs one cleanup pass.
func (j *Job) Run(ctx context.Context) (int64, error) {
	if j.days <= 0 {
		return 0, nil
	}
	removed, err := j.cleaner.CleanupAuditLogs(ctx, j.days)
	if err != nil {
		j.logger.Warn("audit retention failed", zap.Int("retention_days", j.days), zap.Error(err))
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("audit retention", zap.Int64("removed", removed), zap.Int("retention_days", j.days))
	}
	return removed, nil
}

// Schedule runs the job now and then once per Interval. The caller shuts the
// returned scheduler down.
func (j *Job) Schedule() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			_, _ = j.Run(ctx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}
