package jobs

import (
	"context"
	"fmt"

	"runlab/stride/internal/constants"
)

// SyncDetails fetches segment efforts for the newest runs that have none yet,
// up to the configured batch size. A failing activity is skipped with its
// reason; the batch continues.
func (j *SyncJob) SyncDetails(ctx context.Context) (*BatchSummary, error) {
	summary := newBatch(constants.SyncStageDetails)

	pending, err := j.activities.ListWithoutEfforts(ctx, j.batchSize)
	if err != nil {
		return summary, fmt.Errorf("list activities without efforts: %w", err)
	}
	j.log.Infow("[SyncJob] Fetching activity details", "pending", len(pending))

	for _, activity := range pending {
		detail, err := j.source.GetActivityDetail(ctx, activity.ID)
		if err != nil {
			if isAbort(ctx, err) {
				return summary, err
			}
			j.log.Warnw("[SyncJob] Skipping activity detail", "activity_id", activity.ID, "error", err)
			summary.skipped(activity.ID, err)
			j.countItem(constants.SyncStageDetails, OutcomeSkipped)
			continue
		}

		segments, efforts := effortsFromDetail(activity, detail)
		if err := j.segments.SaveActivityEfforts(ctx, segments, efforts); err != nil {
			if isAbort(ctx, err) {
				return summary, err
			}
			j.log.Warnw("[SyncJob] Skipping activity efforts", "activity_id", activity.ID, "error", err)
			summary.skipped(activity.ID, err)
			j.countItem(constants.SyncStageDetails, OutcomeSkipped)
			continue
		}

		summary.synced(activity.ID, len(efforts))
		j.countItem(constants.SyncStageDetails, OutcomeSynced)
	}

	j.log.Infow("[SyncJob] Activity details done",
		"synced", summary.Synced, "skipped", summary.Skipped, "efforts", summary.Persisted)
	return summary, nil
}
