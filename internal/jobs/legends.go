package jobs

import (
	"context"
	"fmt"
	"time"

	"runlab/stride/internal/constants"
	gormModels "runlab/stride/internal/models/gorm"
)

// SnapshotLegends records today's local legend status for every segment the
// athlete has run. A day that already has any snapshot row is skipped as a
// whole, so a partially failed day is not retried until tomorrow.
func (j *SyncJob) SnapshotLegends(ctx context.Context, today time.Time) (*BatchSummary, error) {
	summary := newBatch(constants.SyncStageLegends)
	day := today.Format(constants.DayLayout)

	done, err := j.legends.HasDate(ctx, day)
	if err != nil {
		return summary, fmt.Errorf("check snapshot day: %w", err)
	}
	if done {
		j.log.Infow("[SyncJob] Local legends already snapshotted today", "date", day)
		summary.ShortCircuited = true
		return summary, nil
	}

	ids, err := j.segments.DistinctEffortSegmentIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list effort segments: %w", err)
	}
	j.log.Infow("[SyncJob] Snapshotting local legends", "date", day, "segments", len(ids))

	for _, id := range ids {
		segment, err := j.source.GetSegment(ctx, id)
		if err != nil {
			if isAbort(ctx, err) {
				return summary, err
			}
			j.log.Warnw("[SyncJob] Skipping segment snapshot", "segment_id", id, "error", err)
			summary.skipped(id, err)
			j.countItem(constants.SyncStageLegends, OutcomeSkipped)
			continue
		}

		snap := &gormModels.LocalLegendSnapshot{Date: day, SegmentID: id}
		if ll := segment.LocalLegend; ll != nil {
			snap.IsLocalLegend = ll.IsLocalLegend
			snap.EffortCount = ll.EffortCount
		}
		if err := j.legends.Upsert(ctx, snap); err != nil {
			if isAbort(ctx, err) {
				return summary, err
			}
			j.log.Warnw("[SyncJob] Skipping segment snapshot", "segment_id", id, "error", err)
			summary.skipped(id, err)
			j.countItem(constants.SyncStageLegends, OutcomeSkipped)
			continue
		}

		summary.synced(id, 1)
		j.countItem(constants.SyncStageLegends, OutcomeSynced)
	}
	return summary, nil
}
