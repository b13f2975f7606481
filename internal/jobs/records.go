package jobs

import (
	"context"
	"fmt"

	"runlab/stride/internal/analytics"
	gormModels "runlab/stride/internal/models/gorm"
)

// ComputePersonalRecords files every run into its distance bucket. Existing
// (athlete, bucket, activity) rows are left untouched, so a record keeps the
// time it was first written with. It returns the number of rows created and
// does nothing while no athlete is connected.
func (j *SyncJob) ComputePersonalRecords(ctx context.Context) (int, error) {
	athlete, err := j.athletes.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("load athlete: %w", err)
	}
	if athlete == nil {
		j.log.Infow("[SyncJob] No athlete, skipping personal records")
		return 0, nil
	}

	created := 0
	for _, bucket := range analytics.Buckets {
		runs, err := j.activities.FindRunsByDistance(ctx, bucket.Min, bucket.Max)
		if err != nil {
			return created, fmt.Errorf("select %s candidates: %w", bucket.Type, err)
		}
		for _, run := range runs {
			ok, err := j.records.InsertIfAbsent(ctx, &gormModels.PersonalRecord{
				AthleteID:    athlete.ID,
				DistanceType: bucket.Type,
				Date:         run.Date,
				Time:         run.MovingTime,
				ActivityID:   run.ID,
			})
			if err != nil {
				return created, fmt.Errorf("insert %s record for activity %d: %w", bucket.Type, run.ID, err)
			}
			if ok {
				created++
			}
		}
	}

	j.log.Infow("[SyncJob] Personal records computed", "created", created)
	return created, nil
}
