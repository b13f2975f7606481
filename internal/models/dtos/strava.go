package dtos

// Strava API v3 payloads. Only the fields stride persists are decoded.

// ---- ACTIVITIES ----
type StravaActivity struct {
	ID                 int64          `json:"id"`
	Athlete            StravaMeta     `json:"athlete"`
	Name               *string        `json:"name"`
	Type               string         `json:"type"`
	StartDateLocal     string         `json:"start_date_local"`
	Distance           float64        `json:"distance"`
	MovingTime         int            `json:"moving_time"`
	ElapsedTime        int            `json:"elapsed_time"`
	AverageSpeed       *float64       `json:"average_speed"`
	MaxSpeed           *float64       `json:"max_speed"`
	TotalElevationGain float64        `json:"total_elevation_gain"`
	AverageHeartrate   *float64       `json:"average_heartrate"`
	MaxHeartrate       *float64       `json:"max_heartrate"`
	SufferScore        *float64       `json:"suffer_score"`
	StartLatlng        []float64      `json:"start_latlng"`
	AverageCadence     *float64       `json:"average_cadence"`
	Calories           *float64       `json:"calories"`
	SegmentEfforts     []StravaEffort `json:"segment_efforts,omitempty"` // detail only
}

// StravaMeta is the {id} reference Strava embeds for related resources.
type StravaMeta struct {
	ID int64 `json:"id"`
}

// ---- SEGMENT EFFORTS ----
type StravaEffort struct {
	ID               int64         `json:"id"`
	ElapsedTime      int           `json:"elapsed_time"`
	MovingTime       *int          `json:"moving_time"`
	StartDateLocal   string        `json:"start_date_local"`
	PRRank           *int          `json:"pr_rank"`
	KOMRank          *int          `json:"kom_rank"`
	AverageHeartrate *float64      `json:"average_heartrate"`
	MaxHeartrate     *float64      `json:"max_heartrate"`
	Segment          StravaSegment `json:"segment"`
}

// ---- SEGMENTS ----
type StravaSegment struct {
	ID                 int64              `json:"id"`
	Name               string             `json:"name"`
	Distance           *float64           `json:"distance"`
	TotalElevationGain *float64           `json:"total_elevation_gain"`
	AverageGrade       *float64           `json:"average_grade"`
	ClimbCategory      *int               `json:"climb_category"`
	City               *string            `json:"city"`
	State              *string            `json:"state"`
	StartLatlng        []float64          `json:"start_latlng"`
	EndLatlng          []float64          `json:"end_latlng"`
	LocalLegend        *StravaLocalLegend `json:"local_legend,omitempty"` // detailed segment only
}

type StravaLocalLegend struct {
	IsLocalLegend bool `json:"is_local_legend"`
	EffortCount   int  `json:"effort_count"`
}

// ---- OAUTH ----

// StravaFault is the error body Strava returns on non-2xx responses.
type StravaFault struct {
	Message string `json:"message"`
	Errors  []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
	} `json:"errors"`
}
