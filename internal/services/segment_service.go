package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"runlab/stride/internal/analytics"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
)

const topSegmentsLimit = 20

type CurrentLegend struct {
	SegmentID   int64  `json:"segment_id"`
	Name        string `json:"name"`
	EffortCount int    `json:"effort_count"`
}

type SegmentTimeline struct {
	Name    string                   `json:"name"`
	Periods []analytics.LegendPeriod `json:"periods"`
}

type LegendMonth struct {
	Month           string `json:"month"`
	Legends         int    `json:"legends"`
	SegmentsTracked int    `json:"segments_tracked"`
}

type LocalLegendsResponse struct {
	Current  []CurrentLegend            `json:"current"`
	Total    int                        `json:"total"`
	Timeline map[string]SegmentTimeline `json:"timeline"`
	Monthly  []LegendMonth              `json:"monthly"`
}

func segmentName(name *string, id int64) string {
	if name != nil {
		return *name
	}
	return "segment " + strconv.FormatInt(id, 10)
}

// LocalLegends reports the legends held on the newest snapshot day, the
// possession periods per segment and monthly snapshot counts.
func (s *AnalyticsService) LocalLegends(ctx context.Context) (*LocalLegendsResponse, error) {
	return cached(ctx, s, constants.CachePrefixSegments, "legends", func(ctx context.Context) (*LocalLegendsResponse, error) {
		rows, err := s.reader.LegendSnapshots(ctx)
		if err != nil {
			return nil, fmt.Errorf("load legend snapshots: %w", err)
		}
		dates, err := s.reader.LatestLegendDates(ctx)
		if err != nil {
			return nil, fmt.Errorf("load legend dates: %w", err)
		}

		resp := &LocalLegendsResponse{
			Current:  []CurrentLegend{},
			Timeline: make(map[string]SegmentTimeline),
			Monthly:  []LegendMonth{},
		}

		names := make(map[int64]string)
		obs := make([]analytics.LegendObservation, 0, len(rows))
		type month struct {
			legends  int
			segments map[int64]bool
		}
		months := make(map[string]*month)

		for _, r := range rows {
			names[r.SegmentID] = segmentName(r.Name, r.SegmentID)
			obs = append(obs, analytics.LegendObservation{SegmentID: r.SegmentID, Date: r.Date, IsLegend: r.IsLocalLegend})

			if len(dates) > 0 && r.Date == dates[0] && r.IsLocalLegend {
				resp.Current = append(resp.Current, CurrentLegend{
					SegmentID:   r.SegmentID,
					Name:        names[r.SegmentID],
					EffortCount: r.EffortCount,
				})
			}

			if len(r.Date) < 7 {
				continue
			}
			m, ok := months[r.Date[:7]]
			if !ok {
				m = &month{segments: make(map[int64]bool)}
				months[r.Date[:7]] = m
			}
			if r.IsLocalLegend {
				m.legends++
			}
			m.segments[r.SegmentID] = true
		}
		resp.Total = len(resp.Current)

		for id, name := range names {
			resp.Timeline[strconv.FormatInt(id, 10)] = SegmentTimeline{Name: name, Periods: []analytics.LegendPeriod{}}
		}
		for _, p := range analytics.ReconstructTimeline(obs) {
			key := strconv.FormatInt(p.SegmentID, 10)
			tl := resp.Timeline[key]
			tl.Periods = append(tl.Periods, p)
			resp.Timeline[key] = tl
		}

		for k, m := range months {
			resp.Monthly = append(resp.Monthly, LegendMonth{Month: k, Legends: m.legends, SegmentsTracked: len(m.segments)})
		}
		sort.Slice(resp.Monthly, func(i, j int) bool { return resp.Monthly[i].Month < resp.Monthly[j].Month })
		return resp, nil
	})
}

type MonthlyPRs struct {
	Month string `json:"month"`
	PRs   int    `json:"prs"`
}

type TopSegment struct {
	SegmentID int64  `json:"segment_id"`
	Name      string `json:"name"`
	Efforts   int    `json:"efforts"`
	BestTime  int    `json:"best_time"`
	WorstTime int    `json:"worst_time"`
}

type EffortPoint struct {
	Date        string `json:"date"`
	ElapsedTime int    `json:"elapsed_time"`
	PRRank      *int   `json:"pr_rank"`
}

type SegmentProgression struct {
	Name    string        `json:"name"`
	Best    int           `json:"best"`
	Efforts []EffortPoint `json:"efforts"`
}

type SegmentPRsResponse struct {
	MonthlyPRs  []MonthlyPRs                  `json:"monthly_prs"`
	TopSegments []TopSegment                  `json:"top_segments"`
	Progression map[string]SegmentProgression `json:"progression"`
}

// SegmentPRs counts segment PRs (pr_rank 1) per month and details the 20
// most ridden segments with every effort on them.
func (s *AnalyticsService) SegmentPRs(ctx context.Context) (*SegmentPRsResponse, error) {
	return cached(ctx, s, constants.CachePrefixSegments, "prs", func(ctx context.Context) (*SegmentPRsResponse, error) {
		efforts, err := s.reader.SegmentEfforts(ctx)
		if err != nil {
			return nil, fmt.Errorf("load efforts: %w", err)
		}
		return segmentPRs(efforts), nil
	})
}

func segmentPRs(efforts []repositories.EffortRow) *SegmentPRsResponse {
	resp := &SegmentPRsResponse{
		MonthlyPRs:  []MonthlyPRs{},
		TopSegments: []TopSegment{},
		Progression: make(map[string]SegmentProgression),
	}

	prs := make(map[string]int)
	bySegment := make(map[int64]*TopSegment)
	points := make(map[int64][]EffortPoint)
	for _, e := range efforts {
		if e.PRRank != nil && *e.PRRank == 1 && len(e.Date) >= 7 {
			prs[e.Date[:7]]++
		}
		t, ok := bySegment[e.SegmentID]
		if !ok {
			t = &TopSegment{SegmentID: e.SegmentID, Name: segmentName(e.Name, e.SegmentID), BestTime: e.ElapsedTime}
			bySegment[e.SegmentID] = t
		}
		t.Efforts++
		if e.ElapsedTime < t.BestTime {
			t.BestTime = e.ElapsedTime
		}
		if e.ElapsedTime > t.WorstTime {
			t.WorstTime = e.ElapsedTime
		}
		points[e.SegmentID] = append(points[e.SegmentID], EffortPoint{Date: e.Date, ElapsedTime: e.ElapsedTime, PRRank: e.PRRank})
	}

	for m, n := range prs {
		resp.MonthlyPRs = append(resp.MonthlyPRs, MonthlyPRs{Month: m, PRs: n})
	}
	sort.Slice(resp.MonthlyPRs, func(i, j int) bool { return resp.MonthlyPRs[i].Month < resp.MonthlyPRs[j].Month })

	for _, t := range bySegment {
		resp.TopSegments = append(resp.TopSegments, *t)
	}
	sort.Slice(resp.TopSegments, func(i, j int) bool {
		a, b := resp.TopSegments[i], resp.TopSegments[j]
		if a.Efforts != b.Efforts {
			return a.Efforts > b.Efforts
		}
		return a.SegmentID < b.SegmentID
	})
	if len(resp.TopSegments) > topSegmentsLimit {
		resp.TopSegments = resp.TopSegments[:topSegmentsLimit]
	}

	for _, t := range resp.TopSegments {
		resp.Progression[strconv.FormatInt(t.SegmentID, 10)] = SegmentProgression{
			Name:    t.Name,
			Best:    t.BestTime,
			Efforts: points[t.SegmentID],
		}
	}
	return resp
}

type HeatmapSegment struct {
	SegmentID   int64    `json:"id"`
	Name        string   `json:"name"`
	StartLatlng string   `json:"start_latlng"`
	Distance    *float64 `json:"distance"`
	Efforts     int      `json:"efforts"`
	BestTime    *int     `json:"best_time"`
	HasPR       bool     `json:"has_pr"`
}

// Heatmap lists every located segment with its effort count.
func (s *AnalyticsService) Heatmap(ctx context.Context) ([]HeatmapSegment, error) {
	return cached(ctx, s, constants.CachePrefixSegments, "heatmap", func(ctx context.Context) ([]HeatmapSegment, error) {
		rows, err := s.reader.Heatmap(ctx)
		if err != nil {
			return nil, fmt.Errorf("load heatmap: %w", err)
		}
		out := make([]HeatmapSegment, len(rows))
		for i, r := range rows {
			out[i] = HeatmapSegment{
				SegmentID:   r.SegmentID,
				Name:        r.Name,
				StartLatlng: r.StartLatlng,
				Distance:    r.Distance,
				Efforts:     r.Efforts,
				BestTime:    r.BestTime,
				HasPR:       r.PRCount > 0,
			}
		}
		return out, nil
	})
}
