package repositories

import (
	"context"

	"runlab/stride/internal/constants"

	"github.com/jmoiron/sqlx"
)

// RunRow is the projection of an activity used by the analytics services.
type RunRow struct {
	ID                 int64    `db:"id"`
	Name               *string  `db:"name"`
	Date               string   `db:"date"`
	Distance           float64  `db:"distance"`
	MovingTime         int      `db:"moving_time"`
	AverageSpeed       *float64 `db:"average_speed"`
	AverageHeartrate   *float64 `db:"average_heartrate"`
	MaxHeartrate       *float64 `db:"max_heartrate"`
	TotalElevationGain float64  `db:"total_elevation_gain"`
}

// RecordRow is a personal record joined with the activity it came from.
type RecordRow struct {
	ID           int64    `db:"id"`
	DistanceType string   `db:"distance_type"`
	Date         string   `db:"date"`
	Time         int      `db:"time"`
	ActivityID   int64    `db:"activity_id"`
	Name         *string  `db:"name"`
	Distance     *float64 `db:"distance"`
}

// LegendRow is a snapshot row with its segment attributes.
type LegendRow struct {
	Date          string   `db:"date"`
	SegmentID     int64    `db:"segment_id"`
	IsLocalLegend bool     `db:"is_local_legend"`
	EffortCount   int      `db:"effort_count"`
	Name          *string  `db:"name"`
	Distance      *float64 `db:"distance"`
	City          *string  `db:"city"`
}

// EffortRow is a segment effort with its segment name.
type EffortRow struct {
	SegmentID   int64   `db:"segment_id"`
	Name        *string `db:"name"`
	Date        string  `db:"date"`
	ElapsedTime int     `db:"elapsed_time"`
	PRRank      *int    `db:"pr_rank"`
}

// HeatmapRow aggregates efforts per located segment.
type HeatmapRow struct {
	SegmentID   int64    `db:"segment_id"`
	Name        string   `db:"name"`
	StartLatlng string   `db:"start_latlng"`
	Distance    *float64 `db:"distance"`
	Efforts     int      `db:"efforts"`
	BestTime    *int     `db:"best_time"`
	PRCount     int      `db:"pr_count"`
}

// AnalyticsRepo runs read-only queries through sqlx. Queries are written with
// ? placeholders and rebound for the connected driver.
type AnalyticsRepo struct {
	db *sqlx.DB
}

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// RunsSince returns runs dated on or after since (a date prefix such as
// 2024-01-01; "" means all), oldest first.
func (r *AnalyticsRepo) RunsSince(ctx context.Context, since string) ([]RunRow, error) {
	const query = `
		SELECT id, name, date, distance, moving_time, average_speed,
		       average_heartrate, max_heartrate, total_elevation_gain
		FROM activities
		WHERE type = ? AND date >= ?
		ORDER BY date ASC
	`
	rows := []RunRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), constants.ActivityTypeRun, since); err != nil {
		return nil, err
	}
	return rows, nil
}

// PersonalRecords returns every record, oldest first.
func (r *AnalyticsRepo) PersonalRecords(ctx context.Context) ([]RecordRow, error) {
	const query = `
		SELECT pr.id, pr.distance_type, pr.date, pr.time, pr.activity_id,
		       a.name, a.distance
		FROM personal_records pr
		LEFT JOIN activities a ON a.id = pr.activity_id
		ORDER BY pr.date ASC, pr.id ASC
	`
	rows := []RecordRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// LegendSnapshots returns every snapshot ordered by segment then date.
func (r *AnalyticsRepo) LegendSnapshots(ctx context.Context) ([]LegendRow, error) {
	const query = `
		SELECT ll.date, ll.segment_id, ll.is_local_legend, ll.effort_count,
		       s.name, s.distance, s.city
		FROM local_legend_snapshot ll
		LEFT JOIN segments s ON s.id = ll.segment_id
		ORDER BY ll.segment_id ASC, ll.date ASC
	`
	rows := []LegendRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestLegendDates returns the two most recent snapshot dates, newest first.
func (r *AnalyticsRepo) LatestLegendDates(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT date FROM local_legend_snapshot
		ORDER BY date DESC
		LIMIT 2
	`
	dates := []string{}
	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, err
	}
	return dates, nil
}

// SegmentEfforts returns every effort with its segment name, oldest first.
func (r *AnalyticsRepo) SegmentEfforts(ctx context.Context) ([]EffortRow, error) {
	const query = `
		SELECT se.segment_id, s.name, se.date, se.elapsed_time, se.pr_rank
		FROM segment_efforts se
		LEFT JOIN segments s ON s.id = se.segment_id
		ORDER BY se.date ASC
	`
	rows := []EffortRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Heatmap aggregates efforts for every segment with a known start point.
func (r *AnalyticsRepo) Heatmap(ctx context.Context) ([]HeatmapRow, error) {
	const query = `
		SELECT s.id AS segment_id, s.name, s.start_latlng, s.distance,
		       COUNT(se.id) AS efforts,
		       MIN(se.elapsed_time) AS best_time,
		       SUM(CASE WHEN se.pr_rank = 1 THEN 1 ELSE 0 END) AS pr_count
		FROM segments s
		JOIN segment_efforts se ON se.segment_id = s.id
		WHERE s.start_latlng IS NOT NULL AND s.start_latlng <> ''
		GROUP BY s.id, s.name, s.start_latlng, s.distance
		ORDER BY efforts DESC
	`
	rows := []HeatmapRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}
