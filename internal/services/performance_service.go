package services

import (
	"context"
	"fmt"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
)

type RecordEntry struct {
	Date       string   `json:"date"`
	Time       int      `json:"time"`
	Formatted  string   `json:"formatted"`
	Pace       string   `json:"pace"`
	ActivityID int64    `json:"activity_id"`
	Name       *string  `json:"name,omitempty"`
	IsBest     bool     `json:"is_best"`
	PctOffBest *float64 `json:"pct_off_best,omitempty"`
}

type YearBest struct {
	Year      string `json:"year"`
	Time      int    `json:"time"`
	Formatted string `json:"formatted"`
	Pace      string `json:"pace"`
}

// Records lists every record per distance in date order, flagging the
// fastest and how far each one is off it, in percent.
func (s *AnalyticsService) Records(ctx context.Context) (map[string][]RecordEntry, error) {
	return cached(ctx, s, constants.CachePrefixPerformance, "records", func(ctx context.Context) (map[string][]RecordEntry, error) {
		rows, err := s.reader.PersonalRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		best := bestTimes(rows)

		out := make(map[string][]RecordEntry)
		for _, r := range rows {
			e := RecordEntry{
				Date:       r.Date,
				Time:       r.Time,
				Formatted:  analytics.FormatDuration(r.Time),
				Pace:       analytics.RacePace(r.Time, r.DistanceType),
				ActivityID: r.ActivityID,
				Name:       r.Name,
			}
			b := best[r.DistanceType]
			e.IsBest = r.Time == b
			if b > 0 {
				pct := analytics.Round(float64(r.Time-b)/float64(b)*100, 1)
				e.PctOffBest = &pct
			}
			out[r.DistanceType] = append(out[r.DistanceType], e)
		}
		return out, nil
	})
}

// BestByYear returns the fastest record per distance and calendar year.
func (s *AnalyticsService) BestByYear(ctx context.Context) (map[string][]YearBest, error) {
	return cached(ctx, s, constants.CachePrefixPerformance, "best_by_year", func(ctx context.Context) (map[string][]YearBest, error) {
		rows, err := s.reader.PersonalRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}

		type key struct{ distance, year string }
		best := make(map[key]int)
		var order []key
		for _, r := range rows {
			if len(r.Date) < 4 {
				continue
			}
			k := key{r.DistanceType, r.Date[:4]}
			cur, ok := best[k]
			if !ok {
				order = append(order, k)
			}
			if !ok || r.Time < cur {
				best[k] = r.Time
			}
		}

		// rows are date ordered, so order is year ordered per distance.
		out := make(map[string][]YearBest)
		for _, k := range order {
			t := best[k]
			out[k.distance] = append(out[k.distance], YearBest{
				Year:      k.year,
				Time:      t,
				Formatted: analytics.FormatDuration(t),
				Pace:      analytics.RacePace(t, k.distance),
			})
		}
		return out, nil
	})
}
