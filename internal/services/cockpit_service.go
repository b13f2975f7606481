package services

import (
	"context"
	"fmt"
	"time"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
)

type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type CockpitResponse struct {
	WeekVolume   float64                         `json:"week_volume"`
	Volume90d    float64                         `json:"volume_90d"`
	Avg4Weeks    float64                         `json:"avg_4_weeks"`
	LocalLegends int                             `json:"local_legends"`
	PR90d        int                             `json:"pr_90d"`
	Projections  map[string]analytics.Projection `json:"projections"`
	Alerts       []Alert                         `json:"alerts"`
}

// Cockpit summarises the current training block. Volumes are in km.
func (s *AnalyticsService) Cockpit(ctx context.Context) (*CockpitResponse, error) {
	today := s.today()
	return cached(ctx, s, constants.CachePrefixCockpit, today.Format(constants.DayLayout), func(ctx context.Context) (*CockpitResponse, error) {
		return s.cockpit(ctx, today)
	})
}

func (s *AnalyticsService) cockpit(ctx context.Context, today time.Time) (*CockpitResponse, error) {
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7)).Format(constants.DayLayout)
	d28 := today.AddDate(0, 0, -28).Format(constants.DayLayout)
	d90 := today.AddDate(0, 0, -90).Format(constants.DayLayout)
	d180 := today.AddDate(0, 0, -180).Format(constants.DayLayout)

	runs, err := s.reader.RunsSince(ctx, d180)
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}

	var week, vol28, vol90, prev90 float64
	for _, r := range runs {
		day := analytics.Day(r.Date)
		if day >= weekStart {
			week += r.Distance
		}
		if day >= d28 {
			vol28 += r.Distance
		}
		if day >= d90 {
			vol90 += r.Distance
		} else {
			prev90 += r.Distance
		}
	}
	avg4w := vol28 / 4

	resp := &CockpitResponse{Alerts: []Alert{}}
	if avg4w > 0 && week > avg4w*1.2 {
		resp.Alerts = append(resp.Alerts, Alert{
			Type:    "warning",
			Message: fmt.Sprintf("Volume semaine +%.0f%% vs moyenne 4 sem.", (week/avg4w-1)*100),
		})
	}
	if prev90 > 0 && vol90 < prev90*0.85 {
		resp.Alerts = append(resp.Alerts, Alert{
			Type:    "danger",
			Message: fmt.Sprintf("Volume 90j en baisse de %.0f%%", (1-vol90/prev90)*100),
		})
	}

	records, err := s.reader.PersonalRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	for _, r := range records {
		if analytics.Day(r.Date) >= d90 {
			resp.PR90d++
		}
	}

	legends, err := s.loadLegendState(ctx, today)
	if err != nil {
		return nil, err
	}
	resp.LocalLegends = legends.current
	for _, a := range legends.lost {
		resp.Alerts = append(resp.Alerts, Alert{Type: a.Type, Message: a.Message})
	}

	resp.WeekVolume = analytics.Round(week/1000, 2)
	resp.Volume90d = analytics.Round(vol90/1000, 2)
	resp.Avg4Weeks = analytics.Round(avg4w/1000, 2)
	resp.Projections = analytics.Projections(bestTimes(records))
	return resp, nil
}

type legendState struct {
	current int
	lost    []analytics.LegendAlert
}

// loadLegendState counts legends on the newest snapshot day and compares the
// calendar days yesterday and today for losses.
func (s *AnalyticsService) loadLegendState(ctx context.Context, today time.Time) (*legendState, error) {
	rows, err := s.reader.LegendSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load legend snapshots: %w", err)
	}
	dates, err := s.reader.LatestLegendDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load legend dates: %w", err)
	}

	todayKey := today.Format(constants.DayLayout)
	yesterdayKey := today.AddDate(0, 0, -1).Format(constants.DayLayout)

	state := &legendState{}
	names := make(map[int64]string)
	var yesterday, current []analytics.LegendObservation
	for _, r := range rows {
		if r.Name != nil {
			names[r.SegmentID] = *r.Name
		}
		obs := analytics.LegendObservation{SegmentID: r.SegmentID, Date: r.Date, IsLegend: r.IsLocalLegend}
		switch r.Date {
		case todayKey:
			current = append(current, obs)
		case yesterdayKey:
			yesterday = append(yesterday, obs)
		}
		if len(dates) > 0 && r.Date == dates[0] && r.IsLocalLegend {
			state.current++
		}
	}
	state.lost = analytics.LostLegendAlerts(yesterday, current, names)
	return state, nil
}
