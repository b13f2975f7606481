package services

import (
	"context"
	"fmt"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
)

type ProjectionsResponse struct {
	Current     map[string]analytics.Projection `json:"current"`
	Timeline    []analytics.ProjectionPoint     `json:"timeline"`
	Confidence  string                          `json:"confidence"`
	Volume90dKm float64                         `json:"volume_90d_km"`
}

// Projections returns the current Riegel projections, how they evolved at
// each 10k or semi record, and a confidence grade from the last 90 days.
func (s *AnalyticsService) Projections(ctx context.Context) (*ProjectionsResponse, error) {
	today := s.today()
	return cached(ctx, s, constants.CachePrefixProjections, today.Format(constants.DayLayout), func(ctx context.Context) (*ProjectionsResponse, error) {
		records, err := s.reader.PersonalRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}

		var points []analytics.RecordPoint
		for _, r := range records {
			if r.DistanceType != "10k" && r.DistanceType != "semi" {
				continue
			}
			points = append(points, analytics.RecordPoint{Date: r.Date, DistanceType: r.DistanceType, Time: r.Time})
		}

		runs, err := s.reader.RunsSince(ctx, today.AddDate(0, 0, -90).Format(constants.DayLayout))
		if err != nil {
			return nil, fmt.Errorf("load runs: %w", err)
		}
		km := 0.0
		for _, r := range runs {
			km += r.Distance / 1000
		}

		timeline := analytics.ProjectionTimeline(points)
		if timeline == nil {
			timeline = []analytics.ProjectionPoint{}
		}
		return &ProjectionsResponse{
			Current:     analytics.Projections(bestTimes(records)),
			Timeline:    timeline,
			Confidence:  analytics.Confidence(km),
			Volume90dKm: analytics.Round(km, 1),
		}, nil
	})
}
