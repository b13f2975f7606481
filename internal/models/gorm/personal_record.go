package gorm

// PersonalRecord classifies an activity into a race-distance bucket. Rows are
// written once and never updated.
type PersonalRecord struct {
	ID           uint   `gorm:"column:id;primaryKey;autoIncrement"`
	AthleteID    int64  `gorm:"column:athlete_id;uniqueIndex:idx_pr_athlete_type_activity"`
	DistanceType string `gorm:"column:distance_type;not null;uniqueIndex:idx_pr_athlete_type_activity;index"`
	Date         string `gorm:"column:date;not null;index"`
	Time         int    `gorm:"column:time;not null"`
	ActivityID   int64  `gorm:"column:activity_id;uniqueIndex:idx_pr_athlete_type_activity"`
}

func (PersonalRecord) TableName() string {
	return "personal_records"
}
