package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"runlab/stride/internal/common"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
	"runlab/stride/internal/metrics"
	gormModels "runlab/stride/internal/models/gorm"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *AnalyticsService
	metrics *metrics.MetricsRegistry
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(gormModels.AllModels()...))

	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	svc := NewAnalyticsService(
		repositories.NewAnalyticsRepo(sqlx.NewDb(sqlDB, "sqlite3")),
		repositories.NewAthleteRepo(db),
		common.NewCacheService(time.Minute, time.Minute),
		time.Minute,
		m,
		zap.NewNop().Sugar(),
	)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 9, 30, 0, 0, time.Local) }
	return &fixture{db: db, svc: svc, metrics: m}
}

func (f *fixture) run(t *testing.T, id int64, date string, km float64, moving int) {
	t.Helper()
	require.NoError(t, f.db.Create(&gormModels.Activity{
		ID:          id,
		Date:        date,
		Distance:    km * 1000,
		MovingTime:  moving,
		ElapsedTime: moving,
		Type:        constants.ActivityTypeRun,
	}).Error)
}

func (f *fixture) record(t *testing.T, distanceType, date string, secs int, activityID int64) {
	t.Helper()
	require.NoError(t, f.db.Create(&gormModels.PersonalRecord{
		AthleteID: 1, DistanceType: distanceType, Date: date, Time: secs, ActivityID: activityID,
	}).Error)
}

func (f *fixture) snapshot(t *testing.T, date string, segmentID int64, legend bool) {
	t.Helper()
	require.NoError(t, f.db.Create(&gormModels.LocalLegendSnapshot{
		Date: date, SegmentID: segmentID, IsLocalLegend: legend, EffortCount: 4,
	}).Error)
}

func TestCockpit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.run(t, 1, "2024-03-18T07:00:00Z", 10, 2400)
	f.run(t, 2, "2024-03-19T07:00:00Z", 10, 2500)
	f.run(t, 3, "2024-03-01T07:00:00Z", 5, 1300)
	f.run(t, 4, "2023-11-01T07:00:00Z", 100, 40000)
	f.record(t, "10k", "2024-03-18T07:00:00Z", 2400, 1)

	require.NoError(t, f.db.Create(&gormModels.Segment{ID: 5, Name: "Quai"}).Error)
	require.NoError(t, f.db.Create(&gormModels.Segment{ID: 6, Name: "Pont"}).Error)
	f.snapshot(t, "2024-03-19", 5, true)
	f.snapshot(t, "2024-03-20", 5, false)
	f.snapshot(t, "2024-03-20", 6, true)

	c, err := f.svc.Cockpit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 20.0, c.WeekVolume)
	assert.Equal(t, 25.0, c.Volume90d)
	assert.Equal(t, 6.25, c.Avg4Weeks)
	assert.Equal(t, 1, c.PR90d)
	assert.Equal(t, 1, c.LocalLegends)
	assert.Equal(t, 11040, c.Projections["marathon_from_10k"].Seconds)

	require.Len(t, c.Alerts, 3)
	assert.Equal(t, Alert{Type: "warning", Message: "Volume semaine +220% vs moyenne 4 sem."}, c.Alerts[0])
	assert.Equal(t, Alert{Type: "danger", Message: "Volume 90j en baisse de 75%"}, c.Alerts[1])
	assert.Equal(t, Alert{Type: "danger", Message: "Local Legend perdue: Quai"}, c.Alerts[2])
}

func TestCockpit_EmptyStore(t *testing.T) {
	f := setup(t)

	c, err := f.svc.Cockpit(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.WeekVolume)
	assert.Zero(t, c.LocalLegends)
	assert.Empty(t, c.Alerts)
	assert.Empty(t, c.Projections)
}

func TestCachedReadsCountHitsAndMisses(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.run(t, 1, "2024-03-18T07:00:00Z", 10, 2400)

	_, err := f.svc.MonthlyVolume(ctx)
	require.NoError(t, err)
	f.run(t, 2, "2024-03-19T07:00:00Z", 10, 2400)
	months, err := f.svc.MonthlyVolume(ctx)
	require.NoError(t, err)

	require.Len(t, months, 1)
	assert.Equal(t, 10.0, months[0].Km, "second read is served from cache")

	prefix := string(constants.CachePrefixVolume)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheMissesTotal.WithLabelValues(prefix)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheHitsTotal.WithLabelValues(prefix)))

	f.svc.cache.Flush()
	months, err = f.svc.MonthlyVolume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.0, months[0].Km)
}

func TestWeeklyVolume_YearFilterAndAverage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.run(t, 1, "2023-12-28T07:00:00Z", 8, 2400)
	f.run(t, 2, "2024-01-02T07:00:00Z", 10, 3000)
	f.run(t, 3, "2024-01-09T07:00:00Z", 20, 6000)

	weeks, err := f.svc.WeeklyVolume(ctx, []string{"2024"})
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, "2024-W01", weeks[0].Period)
	assert.Equal(t, 10.0, weeks[0].MovingAverage4w)
	assert.Equal(t, 15.0, weeks[1].MovingAverage4w)
}

func TestParseYears(t *testing.T) {
	years, err := ParseYears("2024, 2023")
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, years)

	_, err = ParseYears("24")
	assert.Error(t, err)

	years, err = ParseYears("")
	require.NoError(t, err)
	assert.Nil(t, years)
}

func TestRollingVolume(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.run(t, 1, "2024-03-19T07:00:00Z", 4, 1200)
	f.run(t, 2, "2024-03-20T07:00:00Z", 3, 900)

	points, err := f.svc.RollingVolume(ctx, 2)
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, "2024-03-16", points[0].Date)
	assert.Equal(t, "2024-03-20", points[4].Date)
	assert.Equal(t, 7.0, points[4].Km)
	assert.Equal(t, 4.0, points[3].Km)

	_, err = f.svc.RollingVolume(ctx, 0)
	assert.Error(t, err)
	_, err = f.svc.RollingVolume(ctx, MaxRollingDays+1)
	assert.Error(t, err)
}

func TestRecords_FlagsBestAndGap(t *testing.T) {
	f := setup(t)
	f.record(t, "10k", "2024-01-05T07:00:00Z", 2520, 1)
	f.record(t, "10k", "2024-02-05T07:00:00Z", 2400, 2)

	recs, err := f.svc.Records(context.Background())
	require.NoError(t, err)
	tenK := recs["10k"]
	require.Len(t, tenK, 2)

	assert.False(t, tenK[0].IsBest)
	require.NotNil(t, tenK[0].PctOffBest)
	assert.Equal(t, 5.0, *tenK[0].PctOffBest)
	assert.Equal(t, "42:00", tenK[0].Formatted)

	assert.True(t, tenK[1].IsBest)
	assert.Equal(t, "4:00/km", tenK[1].Pace)
}

func TestBestByYear(t *testing.T) {
	f := setup(t)
	f.record(t, "5k", "2023-05-01T07:00:00Z", 1300, 1)
	f.record(t, "5k", "2023-06-01T07:00:00Z", 1250, 2)
	f.record(t, "5k", "2024-05-01T07:00:00Z", 1280, 3)

	best, err := f.svc.BestByYear(context.Background())
	require.NoError(t, err)
	require.Len(t, best["5k"], 2)
	assert.Equal(t, YearBest{Year: "2023", Time: 1250, Formatted: "20:50", Pace: "4:10/km"}, best["5k"][0])
	assert.Equal(t, "2024", best["5k"][1].Year)
}

func TestProjections(t *testing.T) {
	f := setup(t)
	f.record(t, "5k", "2024-01-01T07:00:00Z", 1200, 1)
	f.record(t, "10k", "2024-02-01T07:00:00Z", 2400, 2)
	f.run(t, 2, "2024-03-01T07:00:00Z", 160, 50000)

	p, err := f.svc.Projections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11040, p.Current["marathon_from_10k"].Seconds)
	assert.Equal(t, "3h04:00", p.Current["marathon_from_10k"].Formatted)
	require.Len(t, p.Timeline, 1, "5k records do not add timeline points")
	assert.Equal(t, "2024-02-01", p.Timeline[0].Date)
	assert.Equal(t, "medium", p.Confidence)
	assert.Equal(t, 160.0, p.Volume90dKm)
}

func TestLocalLegends(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Create(&gormModels.Segment{ID: 5, Name: "Quai"}).Error)
	f.snapshot(t, "2024-02-28", 5, true)
	f.snapshot(t, "2024-03-01", 5, true)
	f.snapshot(t, "2024-03-02", 5, false)
	f.snapshot(t, "2024-03-03", 5, true)

	resp, err := f.svc.LocalLegends(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Quai", resp.Current[0].Name)

	tl := resp.Timeline["5"]
	require.Len(t, tl.Periods, 2)
	assert.Equal(t, "2024-02-28", tl.Periods[0].Start)
	require.NotNil(t, tl.Periods[0].End)
	assert.Equal(t, "2024-03-02", *tl.Periods[0].End)
	assert.Equal(t, "2024-03-03", tl.Periods[1].Start)
	assert.Nil(t, tl.Periods[1].End)

	require.Len(t, resp.Monthly, 2)
	assert.Equal(t, LegendMonth{Month: "2024-03", Legends: 2, SegmentsTracked: 1}, resp.Monthly[1])
}

func TestSegmentPRs(t *testing.T) {
	one, two := 1, 2
	quai, pont := "Quai", "Pont"
	resp := segmentPRs([]repositories.EffortRow{
		{SegmentID: 5, Name: &quai, Date: "2024-01-05T07:00:00Z", ElapsedTime: 130, PRRank: &one},
		{SegmentID: 6, Name: &pont, Date: "2024-01-06T07:00:00Z", ElapsedTime: 60},
		{SegmentID: 5, Name: &quai, Date: "2024-02-05T07:00:00Z", ElapsedTime: 120, PRRank: &one},
		{SegmentID: 5, Name: &quai, Date: "2024-02-09T07:00:00Z", ElapsedTime: 125, PRRank: &two},
	})

	assert.Equal(t, []MonthlyPRs{{Month: "2024-01", PRs: 1}, {Month: "2024-02", PRs: 1}}, resp.MonthlyPRs)
	require.Len(t, resp.TopSegments, 2)
	assert.Equal(t, TopSegment{SegmentID: 5, Name: "Quai", Efforts: 3, BestTime: 120, WorstTime: 130}, resp.TopSegments[0])
	assert.Len(t, resp.Progression["5"].Efforts, 3)
	assert.Equal(t, 120, resp.Progression["5"].Best)
}

func TestAnalysisSeries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	hr, speed := 150.0, 3.0
	require.NoError(t, f.db.Create(&gormModels.Activity{
		ID: 1, Date: "2024-03-01T07:00:00Z", Distance: 10000, MovingTime: 3000, ElapsedTime: 3000,
		Type: constants.ActivityTypeRun, AverageHeartrate: &hr, AverageSpeed: &speed,
	}).Error)
	f.run(t, 2, "2024-03-02T07:00:00Z", 2.5, 800)
	f.run(t, 3, "2024-03-03T07:00:00Z", 4, 1300)

	pace, err := f.svc.PaceStability(ctx)
	require.NoError(t, err)
	require.Len(t, pace, 2)
	assert.Equal(t, "2024-03-03T07:00:00Z", pace[0].Date, "newest first")
	assert.Equal(t, "5:00", pace[1].PaceFormatted)

	cardiac, err := f.svc.CardiacDecoupling(ctx)
	require.NoError(t, err)
	require.Len(t, cardiac, 1)
	require.NotNil(t, cardiac[0].Efficiency)
	assert.Equal(t, 0.072, *cardiac[0].Efficiency)
}

func TestVolumeVsPerformance(t *testing.T) {
	f := setup(t)
	f.run(t, 1, "2024-02-01T07:00:00Z", 10, 3000) // 30 days before, included
	f.run(t, 2, "2024-01-31T07:00:00Z", 7, 2100)  // 31 days before, excluded
	f.run(t, 3, "2024-03-02T07:00:00Z", 10, 2400) // the record run itself
	f.record(t, "10k", "2024-03-02T07:00:00Z", 2400, 3)

	points, err := f.svc.VolumeVsPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-03-02", points[0].Date)
	assert.Equal(t, 10.0, points[0].Volume30dKm)
}

func TestAuthStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	st, err := f.svc.AuthStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.Athlete)

	name := "runner"
	require.NoError(t, f.db.Create(&gormModels.Athlete{ID: 9, Username: &name, AccessToken: "secret"}).Error)
	st, err = f.svc.AuthStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, int64(9), st.Athlete.ID)
}
