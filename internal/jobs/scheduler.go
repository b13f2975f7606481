package jobs

import (
	"context"
	"errors"
	"time"

	"runlab/stride/internal/constants"

	"go.uber.org/zap"
)

// DailyScheduler runs an incremental sync once a day at a fixed local time.
type DailyScheduler struct {
	job          *SyncJob
	hour, minute int
	runOnStartup bool
	log          *zap.SugaredLogger
	now          func() time.Time
	done         chan struct{}
}

func NewDailyScheduler(job *SyncJob, hour, minute int, runOnStartup bool, log *zap.SugaredLogger) *DailyScheduler {
	return &DailyScheduler{
		job:          job,
		hour:         hour,
		minute:       minute,
		runOnStartup: runOnStartup,
		log:          log,
		now:          time.Now,
		done:         make(chan struct{}),
	}
}

// Done is closed once RunScheduled has returned, including any sync it was
// running when ctx ended.
func (s *DailyScheduler) Done() <-chan struct{} {
	return s.done
}

// nextRun returns the first hour:minute strictly after now, in now's zone.
func (s *DailyScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunScheduled blocks until ctx is done. It must be called at most once.
func (s *DailyScheduler) RunScheduled(ctx context.Context) {
	defer close(s.done)

	if s.runOnStartup {
		s.run(ctx, "startup")
	}

	for {
		next := s.nextRun(s.now())
		s.log.Infow("[DailyScheduler] Next sync scheduled", "at", next.Format(time.RFC3339))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-timer.C:
			s.run(ctx, "scheduled")
		case <-ctx.Done():
			timer.Stop()
			s.log.Infow("[DailyScheduler] Shutting down scheduled sync")
			return
		}
	}
}

func (s *DailyScheduler) run(ctx context.Context, trigger string) {
	if _, err := s.job.RunSync(ctx, constants.SyncModeIncremental); err != nil {
		if errors.Is(err, ErrSyncInProgress) {
			s.log.Infow("[DailyScheduler] Sync already running, skipping", "trigger", trigger)
			return
		}
		s.log.Errorw("[DailyScheduler] Error in sync run", "trigger", trigger, "error", err)
	}
}
