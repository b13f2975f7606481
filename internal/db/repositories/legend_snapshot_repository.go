package repositories

import (
	"context"

	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LegendSnapshotRepo handles local_legend_snapshot operations
type LegendSnapshotRepo struct {
	db *gormlib.DB
}

func NewLegendSnapshotRepo(db *gormlib.DB) *LegendSnapshotRepo {
	return &LegendSnapshotRepo{db: db}
}

// HasDate reports whether any snapshot was already taken on day.
func (r *LegendSnapshotRepo) HasDate(ctx context.Context, day string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&gorm.LocalLegendSnapshot{}).
		Where("date = ?", day).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Upsert writes one row per (date, segment_id).
// ON CONFLICT (date, segment_id) DO UPDATE
func (r *LegendSnapshotRepo) Upsert(ctx context.Context, snap *gorm.LocalLegendSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "date"},
				{Name: "segment_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"is_local_legend", "effort_count"}),
		}).
		Create(snap).Error
}

// ListByDate returns the snapshot rows of one day.
func (r *LegendSnapshotRepo) ListByDate(ctx context.Context, day string) ([]gorm.LocalLegendSnapshot, error) {
	var rows []gorm.LocalLegendSnapshot
	err := r.db.WithContext(ctx).
		Where("date = ?", day).
		Order("segment_id").
		Find(&rows).Error
	return rows, err
}
