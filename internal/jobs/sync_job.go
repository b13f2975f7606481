package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runlab/stride/internal/common"
	"runlab/stride/internal/config"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
	"runlab/stride/internal/metrics"
	gormModels "runlab/stride/internal/models/gorm"
	"runlab/stride/internal/providers"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// watermarkOverlap re-fetches the last day before the newest stored activity
// so late uploads are not missed.
const watermarkOverlap = 24 * time.Hour

// SyncJob pulls activities from Strava and derives records and local legend
// snapshots from them. One instance is shared by the HTTP handler, the CLI and
// the daily scheduler; the lease keeps their runs from overlapping.
type SyncJob struct {
	source     providers.ActivitySource
	lease      SyncLease
	cache      common.CacheInterface
	activities *repositories.ActivityRepo
	segments   *repositories.SegmentRepo
	legends    *repositories.LegendSnapshotRepo
	records    *repositories.PersonalRecordRepo
	syncLogs   *repositories.SyncLogRepo
	athletes   *repositories.AthleteRepo
	metrics    *metrics.MetricsRegistry
	log        *zap.SugaredLogger

	pageSize  int
	batchSize int
	now       func() time.Time
}

// NewSyncJob creates a new sync job instance. cache and m may be nil.
func NewSyncJob(
	db *gorm.DB,
	source providers.ActivitySource,
	lease SyncLease,
	cache common.CacheInterface,
	cfg config.StravaConfig,
	m *metrics.MetricsRegistry,
	log *zap.SugaredLogger,
) *SyncJob {
	return &SyncJob{
		source:     source,
		lease:      lease,
		cache:      cache,
		activities: repositories.NewActivityRepo(db),
		segments:   repositories.NewSegmentRepo(db),
		legends:    repositories.NewLegendSnapshotRepo(db),
		records:    repositories.NewPersonalRecordRepo(db),
		syncLogs:   repositories.NewSyncLogRepo(db),
		athletes:   repositories.NewAthleteRepo(db),
		metrics:    m,
		log:        log,
		pageSize:   cfg.PageSize,
		batchSize:  cfg.DetailBatchSize,
		now:        time.Now,
	}
}

// ParseMode maps the ?mode= value to a sync mode. Empty means incremental.
func ParseMode(raw string) (string, error) {
	switch raw {
	case "", constants.SyncModeIncremental:
		return constants.SyncModeIncremental, nil
	case constants.SyncModeFull:
		return constants.SyncModeFull, nil
	default:
		return "", fmt.Errorf("unknown sync mode %q", raw)
	}
}

// RunSync executes activities, details, records and legends in that order.
// Each stage commits as it goes, so a failing later stage keeps earlier work.
// On failure the partial result is returned alongside the error and the
// sync_log entry is marked as errored.
func (j *SyncJob) RunSync(ctx context.Context, mode string) (*SyncResult, error) {
	ctx, release, err := j.lease.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := j.now()
	j.log.Infow("[SyncJob] Starting sync", "mode", mode, "at", start.Format(time.RFC3339))

	entry, err := j.syncLogs.Start(ctx, mode, start)
	if err != nil {
		return nil, fmt.Errorf("open sync log: %w", err)
	}

	result := &SyncResult{
		Status:    constants.SyncStatusRunning,
		Mode:      mode,
		SyncLogID: entry.ID,
	}

	if err := j.runStages(ctx, mode, result); err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrLeaseLost) {
			err = fmt.Errorf("%w (%v)", cause, err)
		}
		result.Status = constants.SyncStatusError
		// Record the failure even if ctx was cancelled.
		if ferr := j.syncLogs.Fail(context.WithoutCancel(ctx), entry.ID, err.Error(), j.now()); ferr != nil {
			j.log.Errorw("[SyncJob] Failed to mark sync log as errored", "sync_log_id", entry.ID, "error", ferr)
		}
		j.countRun(mode, constants.SyncStatusError)
		j.log.Errorw("[SyncJob] Sync failed", "mode", mode, "sync_log_id", entry.ID, "error", err)
		return result, err
	}

	if err := j.syncLogs.Complete(ctx, entry.ID, result.ActivitiesSynced, j.now()); err != nil {
		return result, fmt.Errorf("close sync log: %w", err)
	}
	result.Status = constants.SyncStatusCompleted
	j.countRun(mode, constants.SyncStatusCompleted)

	if j.cache != nil {
		j.cache.Flush()
	}

	j.log.Infow("[SyncJob] Completed sync",
		"mode", mode,
		"duration", time.Since(start).Truncate(time.Millisecond).String(),
		"activities", result.ActivitiesSynced,
		"efforts", result.DetailsSynced,
		"records", result.RecordsCreated,
		"legends", result.LegendsSnapshotted,
	)
	return result, nil
}

func (j *SyncJob) runStages(ctx context.Context, mode string, result *SyncResult) error {
	var err error

	err = j.timeStage(constants.SyncStageActivities, func() error {
		result.ActivitiesSynced, err = j.syncActivities(ctx, mode)
		return err
	})
	if err != nil {
		return err
	}

	err = j.timeStage(constants.SyncStageDetails, func() error {
		result.Details, err = j.SyncDetails(ctx)
		if result.Details != nil {
			result.DetailsSynced = result.Details.Persisted
		}
		return err
	})
	if err != nil {
		return err
	}

	err = j.timeStage(constants.SyncStageRecords, func() error {
		result.RecordsCreated, err = j.ComputePersonalRecords(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return j.timeStage(constants.SyncStageLegends, func() error {
		result.Legends, err = j.SnapshotLegends(ctx, j.now())
		if result.Legends != nil {
			result.LegendsSnapshotted = result.Legends.Synced
		}
		return err
	})
}

// syncActivities pages through the athlete's activities until a short or
// empty page and upserts the runs of each page in one transaction.
func (j *SyncJob) syncActivities(ctx context.Context, mode string) (int, error) {
	after, err := j.watermark(ctx, mode)
	if err != nil {
		return 0, err
	}
	if after.IsZero() {
		j.log.Infow("[SyncJob] Full activity fetch (no watermark)", "mode", mode)
	} else {
		j.log.Infow("[SyncJob] Incremental activity fetch", "after", after.UTC().Format(time.RFC3339))
	}

	total := 0
	for page := 1; ; page++ {
		batch, err := j.source.ListActivities(ctx, page, j.pageSize, after)
		if err != nil {
			return total, fmt.Errorf("fetch activities page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}

		runs := make([]gormModels.Activity, 0, len(batch))
		for _, a := range batch {
			if a.Type != constants.ActivityTypeRun {
				continue
			}
			runs = append(runs, activityFromStrava(a))
		}
		if err := j.activities.UpsertPage(ctx, runs); err != nil {
			return total, fmt.Errorf("store activities page %d: %w", page, err)
		}
		total += len(runs)
		if j.metrics != nil {
			j.metrics.ActivitiesSyncedTotal.Add(float64(len(runs)))
		}

		j.log.Debugw("[SyncJob] Stored activity page", "page", page, "fetched", len(batch), "runs", len(runs))

		if len(batch) < j.pageSize {
			break
		}
	}
	return total, nil
}

// watermark returns the lower bound for an incremental fetch, or the zero
// time for a full one.
func (j *SyncJob) watermark(ctx context.Context, mode string) (time.Time, error) {
	if mode == constants.SyncModeFull {
		return time.Time{}, nil
	}
	latest, err := j.activities.LatestDate(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read watermark: %w", err)
	}
	if latest == "" {
		return time.Time{}, nil
	}
	t, err := parseActivityDate(latest)
	if err != nil {
		j.log.Warnw("[SyncJob] Unparseable watermark, doing full fetch", "latest", latest, "error", err)
		return time.Time{}, nil
	}
	return t.Add(-watermarkOverlap), nil
}

func parseActivityDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func (j *SyncJob) timeStage(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	if j.metrics != nil {
		j.metrics.SyncStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
	return err
}

func (j *SyncJob) countRun(mode, status string) {
	if j.metrics != nil {
		j.metrics.SyncRunsTotal.WithLabelValues(mode, status).Inc()
	}
}

func (j *SyncJob) countItem(stage string, outcome ItemOutcome) {
	if j.metrics != nil {
		j.metrics.SyncItemsTotal.WithLabelValues(stage, string(outcome)).Inc()
	}
}

// SyncStatus reports the latest and latest successful sync_log entries.
type SyncStatus struct {
	Running       bool                `json:"running"`
	Latest        *gormModels.SyncLog `json:"latest"`
	LastCompleted *gormModels.SyncLog `json:"last_completed"`
}

// Status reads the sync history.
func (j *SyncJob) Status(ctx context.Context) (*SyncStatus, error) {
	latest, err := j.syncLogs.Latest(ctx)
	if err != nil {
		return nil, err
	}
	done, err := j.syncLogs.LastCompleted(ctx)
	if err != nil {
		return nil, err
	}
	return &SyncStatus{
		Running:       latest != nil && latest.Status == constants.SyncStatusRunning,
		Latest:        latest,
		LastCompleted: done,
	}, nil
}

// isAbort reports errors that should stop a batch rather than skip an item.
func isAbort(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
