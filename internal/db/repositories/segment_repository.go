package repositories

import (
	"context"

	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SegmentRepo handles segments and segment_efforts
type SegmentRepo struct {
	db *gormlib.DB
}

// NewSegmentRepo creates a new segment repository
func NewSegmentRepo(db *gormlib.DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// SaveActivityEfforts upserts the segments and efforts of one activity in a
// single transaction. Each segment is written before the effort referencing it.
func (r *SegmentRepo) SaveActivityEfforts(ctx context.Context, segments []gorm.Segment, efforts []gorm.SegmentEffort) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		for i := range segments {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&segments[i]).Error; err != nil {
				return err
			}
		}
		for i := range efforts {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&efforts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DistinctEffortSegmentIDs lists every segment the athlete has an effort on.
func (r *SegmentRepo) DistinctEffortSegmentIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&gorm.SegmentEffort{}).
		Distinct("segment_id").
		Order("segment_id").
		Pluck("segment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountEfforts returns the number of efforts stored for an activity.
func (r *SegmentRepo) CountEfforts(ctx context.Context, activityID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gorm.SegmentEffort{}).
		Where("activity_id = ?", activityID).
		Count(&n).Error
	return n, err
}
