package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor_InclusiveBounds(t *testing.T) {
	cases := []struct {
		distance float64
		want     string
		ok       bool
	}{
		{9500, "10k", true},
		{10500, "10k", true},
		{9499, "", false},
		{10501, "", false},
		{4500, "5k", true},
		{22000, "semi", true},
		{43500, "marathon", true},
		{30000, "", false},
	}
	for _, tc := range cases {
		b, ok := BucketFor(tc.distance)
		assert.Equal(t, tc.ok, ok, "distance %v", tc.distance)
		assert.Equal(t, tc.want, b.Type, "distance %v", tc.distance)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "40:00", FormatDuration(2400))
	assert.Equal(t, "3h04:00", FormatDuration(11040))
	assert.Equal(t, "1h00:05", FormatDuration(3605))
	assert.Equal(t, "0:59", FormatDuration(59))
	assert.Equal(t, "-", FormatDuration(0))
}

func TestPaceAndRacePace(t *testing.T) {
	p, ok := Pace(2400, 10000)
	require.True(t, ok)
	assert.Equal(t, 240.0, p)
	assert.Equal(t, "4:00/km", FormatPace(p))

	_, ok = Pace(100, 0)
	assert.False(t, ok)

	assert.Equal(t, "4:44/km", RacePace(6000, "semi"))
	assert.Equal(t, "", RacePace(6000, "ultra"))
}

func TestCardiacEfficiency(t *testing.T) {
	speed, hr, zero := 3.0, 150.0, 0.0

	got := CardiacEfficiency(&speed, &hr)
	require.NotNil(t, got)
	assert.Equal(t, 0.072, *got)

	assert.Nil(t, CardiacEfficiency(&speed, nil))
	assert.Nil(t, CardiacEfficiency(&speed, &zero))
	assert.Nil(t, CardiacEfficiency(nil, &hr))
}

func TestRiegelMarathonFromTenK(t *testing.T) {
	p := Projections(map[string]int{"10k": 2400})

	marathon, ok := p["marathon_from_10k"]
	require.True(t, ok)
	// 2400 * (42195/10000)^1.06 = 11040.48
	assert.Equal(t, 11040, marathon.Seconds)
	assert.Equal(t, "3h04:00", marathon.Formatted)
	assert.Equal(t, "40:00", marathon.SourceTime)
	assert.Equal(t, "10k", marathon.SourceDistance)

	_, ok = p["semi_from_10k"]
	assert.True(t, ok)
	_, ok = p["marathon_from_semi"]
	assert.False(t, ok, "no semi best, no semi-based projection")
}

func TestProjectionTimelineUsesRunningBest(t *testing.T) {
	points := ProjectionTimeline([]RecordPoint{
		{Date: "2024-01-01T08:00:00Z", DistanceType: "5k", Time: 1200},
		{Date: "2024-02-01T08:00:00Z", DistanceType: "10k", Time: 2500},
		{Date: "2024-03-01T08:00:00Z", DistanceType: "10k", Time: 2600},
		{Date: "2024-04-01T08:00:00Z", DistanceType: "10k", Time: 2400},
	})

	require.Len(t, points, 3)
	assert.Equal(t, "2024-02-01", points[0].Date)
	assert.Equal(t, points[0].Projections["marathon_from_10k"], points[1].Projections["marathon_from_10k"],
		"a slower record does not move the running best")
	assert.Equal(t, 11040, points[2].Projections["marathon_from_10k"].Seconds)
}

func TestConfidenceThresholds(t *testing.T) {
	assert.Equal(t, "medium", Confidence(300))
	assert.Equal(t, "high", Confidence(301))
	assert.Equal(t, "medium", Confidence(150.5))
	assert.Equal(t, "low", Confidence(150))
	assert.Equal(t, "low", Confidence(0))
}

func TestRollingVolumeWindow(t *testing.T) {
	daily := map[string]float64{
		"2024-03-01": 5,
		"2024-03-02": 3,
		"2024-03-03": 0,
		"2024-03-04": 7,
	}
	today := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

	points := RollingVolume(daily, 2, today)

	require.Len(t, points, 5)
	assert.Equal(t, "2024-02-29", points[0].Date)
	last := points[len(points)-1]
	assert.Equal(t, "2024-03-04", last.Date)
	assert.Equal(t, 7.0, last.Km)
	assert.Equal(t, 8.0, points[2].Km, "2024-03-02 covers 03-01 and 03-02")
}

func TestWeeklyVolumeAndMovingAverage(t *testing.T) {
	runs := []Run{
		{Date: "2024-01-01T07:00:00Z", Distance: 10000, MovingTime: 3000},
		{Date: "2024-01-03T07:00:00Z", Distance: 5000, MovingTime: 1500},
		{Date: "2024-01-08T07:00:00Z", Distance: 8000, MovingTime: 2400},
		{Date: "2024-12-30T07:00:00Z", Distance: 4000, MovingTime: 1200},
	}

	weeks := WeeklyVolume(runs)
	require.Len(t, weeks, 3)
	assert.Equal(t, "2024-W01", weeks[0].Period)
	assert.Equal(t, 15.0, weeks[0].Km)
	assert.Equal(t, 2, weeks[0].Runs)
	assert.Equal(t, "2025-W01", weeks[2].Period, "ISO week of 2024-12-30")

	ma := MovingAverage([]float64{10, 20, 30, 40, 50}, 4)
	assert.Equal(t, []float64{10, 15, 20, 25, 35}, ma)
	assert.Equal(t, []float64{10, 20, 30}, MovingAverage([]float64{10, 20, 30}, 0))
	assert.Equal(t, []float64{10, 20}, MovingAverage([]float64{10, 20}, -3))

	months := MonthlyVolume(runs)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-01", months[0].Period)
	assert.Equal(t, 23.0, months[0].Km)

	years := YearlyVolume(runs)
	require.Len(t, years, 1)
	assert.Equal(t, 4, years[0].Runs)
}

func TestReconstructTimeline(t *testing.T) {
	rows := []LegendObservation{
		{SegmentID: 1, Date: "2024-03-01", IsLegend: true},
		{SegmentID: 1, Date: "2024-03-02", IsLegend: true},
		{SegmentID: 1, Date: "2024-03-03", IsLegend: false},
		{SegmentID: 1, Date: "2024-03-04", IsLegend: true},
		{SegmentID: 2, Date: "2024-03-01", IsLegend: false},
	}

	periods := ReconstructTimeline(rows)

	require.Len(t, periods, 2)
	assert.Equal(t, "2024-03-01", periods[0].Start)
	require.NotNil(t, periods[0].End)
	assert.Equal(t, "2024-03-03", *periods[0].End)
	assert.Equal(t, "2024-03-04", periods[1].Start)
	assert.Nil(t, periods[1].End)
}

func TestLostLegendAlerts(t *testing.T) {
	yesterday := []LegendObservation{
		{SegmentID: 1, Date: "2024-03-03", IsLegend: true},
		{SegmentID: 2, Date: "2024-03-03", IsLegend: false},
		{SegmentID: 3, Date: "2024-03-03", IsLegend: true},
	}
	today := []LegendObservation{
		{SegmentID: 1, Date: "2024-03-04", IsLegend: false},
		{SegmentID: 2, Date: "2024-03-04", IsLegend: true},
		{SegmentID: 3, Date: "2024-03-04", IsLegend: true},
	}

	alerts := LostLegendAlerts(yesterday, today, map[int64]string{1: "Quai Rive Gauche"})

	require.Len(t, alerts, 1)
	assert.Equal(t, int64(1), alerts[0].SegmentID)
	assert.Equal(t, "danger", alerts[0].Type)
	assert.Equal(t, "Local Legend perdue: Quai Rive Gauche", alerts[0].Message)
}
