package jobs

import (
	"context"

	"runlab/stride/internal/config"

	"go.uber.org/zap"
)

// InitializeJobs starts the daily sync scheduler in the background.
func InitializeJobs(ctx context.Context, job *SyncJob, cfg config.SyncConfig, log *zap.SugaredLogger) (*DailyScheduler, error) {
	hour, minute, err := cfg.ParseDailyAt()
	if err != nil {
		return nil, err
	}
	scheduler := NewDailyScheduler(job, hour, minute, cfg.RunOnStartup, log)
	go scheduler.RunScheduled(ctx)
	return scheduler, nil
}
