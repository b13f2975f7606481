package gorm

// Segment holds the static attributes of a Strava segment.
type Segment struct {
	ID            int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name          string   `gorm:"column:name;not null"`
	Distance      *float64 `gorm:"column:distance"`
	ElevationGain *float64 `gorm:"column:elevation_gain"`
	AverageGrade  *float64 `gorm:"column:average_grade"`
	ClimbCategory *int     `gorm:"column:climb_category"`
	City          *string  `gorm:"column:city"`
	State         *string  `gorm:"column:state"`
	StartLatlng   *string  `gorm:"column:start_latlng"`
	EndLatlng     *string  `gorm:"column:end_latlng"`
}

func (Segment) TableName() string {
	return "segments"
}

// SegmentEffort is one traversal of a segment during an activity.
type SegmentEffort struct {
	ID               int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	ActivityID       int64    `gorm:"column:activity_id;index"`
	SegmentID        int64    `gorm:"column:segment_id;index"`
	ElapsedTime      int      `gorm:"column:elapsed_time;not null"`
	MovingTime       *int     `gorm:"column:moving_time"`
	Date             string   `gorm:"column:date;not null;index"`
	PRRank           *int     `gorm:"column:pr_rank"`
	KOMRank          *int     `gorm:"column:kom_rank"`
	AverageHeartrate *float64 `gorm:"column:average_heartrate"`
	MaxHeartrate     *float64 `gorm:"column:max_heartrate"`
}

func (SegmentEffort) TableName() string {
	return "segment_efforts"
}
