package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
)

// DefaultRollingDays is the rolling window when none is requested.
const DefaultRollingDays = 90

// MaxRollingDays bounds the rolling window.
const MaxRollingDays = 365

type WeeklyVolume struct {
	analytics.PeriodVolume
	MovingAverage4w float64 `json:"ma_4w"`
}

func toRuns(rows []repositories.RunRow) []analytics.Run {
	runs := make([]analytics.Run, len(rows))
	for i, r := range rows {
		runs[i] = analytics.Run{
			Date:       r.Date,
			Distance:   r.Distance,
			MovingTime: r.MovingTime,
			Elevation:  r.TotalElevationGain,
		}
	}
	return runs
}

// ParseYears reads a comma separated year filter such as "2023,2024".
func ParseYears(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var years []string
	for _, y := range strings.Split(raw, ",") {
		y = strings.TrimSpace(y)
		if _, err := strconv.Atoi(y); err != nil || len(y) != 4 {
			return nil, fmt.Errorf("invalid year %q", y)
		}
		years = append(years, y)
	}
	sort.Strings(years)
	return years, nil
}

// WeeklyVolume groups runs by ISO week with a trailing four-week average,
// optionally restricted to the given years.
func (s *AnalyticsService) WeeklyVolume(ctx context.Context, years []string) ([]WeeklyVolume, error) {
	return cached(ctx, s, constants.CachePrefixVolume, "weekly:"+strings.Join(years, ","), func(ctx context.Context) ([]WeeklyVolume, error) {
		rows, err := s.reader.RunsSince(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		runs := filterYears(toRuns(rows), years)

		weeks := analytics.WeeklyVolume(runs)
		km := make([]float64, len(weeks))
		for i, w := range weeks {
			km[i] = w.Km
		}
		avg := analytics.MovingAverage(km, 4)

		out := make([]WeeklyVolume, len(weeks))
		for i, w := range weeks {
			out[i] = WeeklyVolume{PeriodVolume: w, MovingAverage4w: avg[i]}
		}
		return out, nil
	})
}

func filterYears(runs []analytics.Run, years []string) []analytics.Run {
	if len(years) == 0 {
		return runs
	}
	keep := make(map[string]bool, len(years))
	for _, y := range years {
		keep[y] = true
	}
	out := runs[:0:0]
	for _, r := range runs {
		if len(r.Date) >= 4 && keep[r.Date[:4]] {
			out = append(out, r)
		}
	}
	return out
}

func (s *AnalyticsService) MonthlyVolume(ctx context.Context) ([]analytics.PeriodVolume, error) {
	return s.periodVolume(ctx, "monthly", analytics.MonthlyVolume)
}

func (s *AnalyticsService) YearlyVolume(ctx context.Context) ([]analytics.PeriodVolume, error) {
	return s.periodVolume(ctx, "yearly", analytics.YearlyVolume)
}

func (s *AnalyticsService) periodVolume(ctx context.Context, key string, group func([]analytics.Run) []analytics.PeriodVolume) ([]analytics.PeriodVolume, error) {
	return cached(ctx, s, constants.CachePrefixVolume, key, func(ctx context.Context) ([]analytics.PeriodVolume, error) {
		rows, err := s.reader.RunsSince(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		return group(toRuns(rows)), nil
	})
}

// RollingVolume returns the trailing days-window sum for every day of the
// last 2*days days.
func (s *AnalyticsService) RollingVolume(ctx context.Context, days int) ([]analytics.RollingPoint, error) {
	if days <= 0 || days > MaxRollingDays {
		return nil, fmt.Errorf("days must be between 1 and %d", MaxRollingDays)
	}
	today := s.today()
	key := fmt.Sprintf("rolling:%d:%s", days, today.Format(constants.DayLayout))

	return cached(ctx, s, constants.CachePrefixVolume, key, func(ctx context.Context) ([]analytics.RollingPoint, error) {
		// The first evaluated day still needs days-1 days of history.
		since := today.AddDate(0, 0, -(3*days - 1)).Format(constants.DayLayout)
		rows, err := s.reader.RunsSince(ctx, since)
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		return analytics.RollingVolume(analytics.DailyKm(toRuns(rows)), days, today), nil
	})
}
