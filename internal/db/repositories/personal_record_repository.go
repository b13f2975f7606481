package repositories

import (
	"context"

	"runlab/stride/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PersonalRecordRepo handles personal_records. Rows are insert-only.
type PersonalRecordRepo struct {
	db *gormlib.DB
}

func NewPersonalRecordRepo(db *gormlib.DB) *PersonalRecordRepo {
	return &PersonalRecordRepo{db: db}
}

// InsertIfAbsent creates the record unless (athlete, distance type, activity)
// already exists. It reports whether a row was written.
func (r *PersonalRecordRepo) InsertIfAbsent(ctx context.Context, rec *gorm.PersonalRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "athlete_id"},
				{Name: "distance_type"},
				{Name: "activity_id"},
			},
			DoNothing: true,
		}).
		Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByType returns the records of one distance type, fastest first.
func (r *PersonalRecordRepo) ListByType(ctx context.Context, distanceType string) ([]gorm.PersonalRecord, error) {
	var recs []gorm.PersonalRecord
	err := r.db.WithContext(ctx).
		Where("distance_type = ?", distanceType).
		Order("time ASC").
		Find(&recs).Error
	return recs, err
}
