package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
)

const (
	paceStabilityMinDistance = 3000
	paceStabilityLimit       = 100
	cardiacMinDistance       = 5000
	cardiacLimit             = 200
	volumeWindowDays         = 30
)

type PacePoint struct {
	Date          string   `json:"date"`
	Name          *string  `json:"name"`
	DistanceKm    float64  `json:"distance_km"`
	PaceSKm       float64  `json:"pace_s_km"`
	PaceFormatted string   `json:"pace_formatted"`
	Heartrate     *float64 `json:"heartrate"`
}

type CardiacPoint struct {
	Date       string   `json:"date"`
	Name       *string  `json:"name"`
	PaceSKm    float64  `json:"pace_s_km"`
	AvgHR      *float64 `json:"avg_hr"`
	MaxHR      *float64 `json:"max_hr"`
	Efficiency *float64 `json:"efficiency"`
}

type VolumePerfPoint struct {
	Date        string  `json:"date"`
	Time10k     int     `json:"time_10k"`
	Formatted   string  `json:"formatted"`
	Volume30dKm float64 `json:"volume_30d_km"`
}

// newestFirst walks runs from the most recent and keeps at most limit that
// pass keep.
func newestFirst(rows []repositories.RunRow, limit int, keep func(repositories.RunRow) bool) []repositories.RunRow {
	var out []repositories.RunRow
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// PaceStability returns the pace of the last 100 runs longer than 3 km.
func (s *AnalyticsService) PaceStability(ctx context.Context) ([]PacePoint, error) {
	return cached(ctx, s, constants.CachePrefixAnalysis, "pace", func(ctx context.Context) ([]PacePoint, error) {
		rows, err := s.reader.RunsSince(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		runs := newestFirst(rows, paceStabilityLimit, func(r repositories.RunRow) bool {
			return r.Distance > paceStabilityMinDistance
		})

		out := make([]PacePoint, 0, len(runs))
		for _, r := range runs {
			pace, _ := analytics.Pace(r.MovingTime, r.Distance)
			out = append(out, PacePoint{
				Date:          r.Date,
				Name:          r.Name,
				DistanceKm:    analytics.Round(r.Distance/1000, 2),
				PaceSKm:       analytics.Round(pace, 1),
				PaceFormatted: strings.TrimSuffix(analytics.FormatPace(pace), "/km"),
				Heartrate:     r.AverageHeartrate,
			})
		}
		return out, nil
	})
}

// CardiacDecoupling returns pace and cardiac efficiency of the last 200
// runs longer than 5 km that carry heart rate.
func (s *AnalyticsService) CardiacDecoupling(ctx context.Context) ([]CardiacPoint, error) {
	return cached(ctx, s, constants.CachePrefixAnalysis, "cardiac", func(ctx context.Context) ([]CardiacPoint, error) {
		rows, err := s.reader.RunsSince(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		runs := newestFirst(rows, cardiacLimit, func(r repositories.RunRow) bool {
			return r.AverageHeartrate != nil && r.Distance > cardiacMinDistance
		})

		out := make([]CardiacPoint, 0, len(runs))
		for _, r := range runs {
			pace, _ := analytics.Pace(r.MovingTime, r.Distance)
			out = append(out, CardiacPoint{
				Date:       r.Date,
				Name:       r.Name,
				PaceSKm:    analytics.Round(pace, 1),
				AvgHR:      r.AverageHeartrate,
				MaxHR:      r.MaxHeartrate,
				Efficiency: analytics.CardiacEfficiency(r.AverageSpeed, r.AverageHeartrate),
			})
		}
		return out, nil
	})
}

// VolumeVsPerformance pairs every 10k record with the distance run in the
// 30 days before it.
func (s *AnalyticsService) VolumeVsPerformance(ctx context.Context) ([]VolumePerfPoint, error) {
	return cached(ctx, s, constants.CachePrefixAnalysis, "volume_perf", func(ctx context.Context) ([]VolumePerfPoint, error) {
		records, err := s.reader.PersonalRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		rows, err := s.reader.RunsSince(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		daily := analytics.DailyKm(toRuns(rows))

		out := []VolumePerfPoint{}
		for _, r := range records {
			if r.DistanceType != "10k" {
				continue
			}
			day, err := time.Parse(constants.DayLayout, analytics.Day(r.Date))
			if err != nil {
				s.log.Warnw("Skipping record with unparseable date", "activity_id", r.ActivityID, "date", r.Date)
				continue
			}
			out = append(out, VolumePerfPoint{
				Date:        day.Format(constants.DayLayout),
				Time10k:     r.Time,
				Formatted:   analytics.FormatDuration(r.Time),
				Volume30dKm: analytics.Round(analytics.WindowKm(daily, day.AddDate(0, 0, -1), volumeWindowDays), 1),
			})
		}
		return out, nil
	})
}
