package gorm

// Activity is a running activity keyed by its Strava id. Rows are replaced
// wholesale on every sync pass.
type Activity struct {
	ID                 int64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	AthleteID          *int64   `gorm:"column:athlete_id;index"`
	Name               *string  `gorm:"column:name"`
	Date               string   `gorm:"column:date;not null;index"`
	Distance           float64  `gorm:"column:distance;not null"`
	MovingTime         int      `gorm:"column:moving_time;not null"`
	ElapsedTime        int      `gorm:"column:elapsed_time;not null"`
	AverageSpeed       *float64 `gorm:"column:average_speed"`
	MaxSpeed           *float64 `gorm:"column:max_speed"`
	TotalElevationGain float64  `gorm:"column:total_elevation_gain"`
	AverageHeartrate   *float64 `gorm:"column:average_heartrate"`
	MaxHeartrate       *float64 `gorm:"column:max_heartrate"`
	Type               string   `gorm:"column:type;not null;default:Run;index"`
	SufferScore        *float64 `gorm:"column:suffer_score"`
	StartLatlng        *string  `gorm:"column:start_latlng"`
	AverageCadence     *float64 `gorm:"column:average_cadence"`
	Calories           *float64 `gorm:"column:calories"`
}

func (Activity) TableName() string {
	return "activities"
}
