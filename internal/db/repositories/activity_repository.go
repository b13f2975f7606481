package repositories

import (
	"context"
	"database/sql"

	"runlab/stride/internal/constants"
	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityRepo handles activities table operations
type ActivityRepo struct {
	db *gormlib.DB
}

// NewActivityRepo creates a new activity repository
func NewActivityRepo(db *gormlib.DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// LatestDate returns the most recent stored activity date, or "" when the
// table is empty.
func (r *ActivityRepo) LatestDate(ctx context.Context) (string, error) {
	var latest sql.NullString
	row := r.db.WithContext(ctx).
		Model(&gorm.Activity{}).
		Select("MAX(date)").
		Row()
	if err := row.Scan(&latest); err != nil {
		return "", err
	}
	return latest.String, nil
}

// UpsertPage replaces every activity of one page inside a single transaction.
// ON CONFLICT (id) DO UPDATE SET every column
func (r *ActivityRepo) UpsertPage(ctx context.Context, activities []gorm.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&activities).Error
	})
}

// ListWithoutEfforts returns the newest runs that have no segment effort yet.
func (r *ActivityRepo) ListWithoutEfforts(ctx context.Context, limit int) ([]gorm.Activity, error) {
	var activities []gorm.Activity
	err := r.db.WithContext(ctx).
		Table("activities AS a").
		Select("a.*").
		Joins("LEFT JOIN segment_efforts se ON se.activity_id = a.id").
		Where("se.id IS NULL AND a.type = ?", constants.ActivityTypeRun).
		Order("a.date DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindRunsByDistance returns runs whose distance lies in [minM, maxM],
// fastest moving time first.
func (r *ActivityRepo) FindRunsByDistance(ctx context.Context, minM, maxM float64) ([]gorm.Activity, error) {
	var activities []gorm.Activity
	err := r.db.WithContext(ctx).
		Where("type = ? AND distance >= ? AND distance <= ?", constants.ActivityTypeRun, minM, maxM).
		Order("moving_time ASC").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// FindByID returns nil when the activity is unknown.
func (r *ActivityRepo) FindByID(ctx context.Context, id int64) (*gorm.Activity, error) {
	var activity gorm.Activity
	err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&gorm.Activity{}).Count(&n).Error
	return n, err
}
