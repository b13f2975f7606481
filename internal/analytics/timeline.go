package analytics

import (
	"fmt"
	"sort"
)

// LegendObservation is one snapshot row.
type LegendObservation struct {
	SegmentID int64
	Date      string
	IsLegend  bool
}

// LegendPeriod is a contiguous stretch of local legend status. End is nil
// while the status is still held.
type LegendPeriod struct {
	SegmentID int64   `json:"segment_id"`
	Start     string  `json:"start"`
	End       *string `json:"end"`
}

// ReconstructTimeline turns snapshot rows into possession periods. A 0→1
// transition opens a period, 1→0 closes it on that date, and a period still
// open after the last row stays open. Periods are ordered by segment then start.
func ReconstructTimeline(rows []LegendObservation) []LegendPeriod {
	bySegment := make(map[int64][]LegendObservation)
	var segments []int64
	for _, r := range rows {
		if _, ok := bySegment[r.SegmentID]; !ok {
			segments = append(segments, r.SegmentID)
		}
		bySegment[r.SegmentID] = append(bySegment[r.SegmentID], r)
	}
	sort.Slice(segments, func(i, j int) bool { return segments[i] < segments[j] })

	var periods []LegendPeriod
	for _, id := range segments {
		obs := bySegment[id]
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date < obs[j].Date })

		var open *LegendPeriod
		for _, o := range obs {
			switch {
			case o.IsLegend && open == nil:
				open = &LegendPeriod{SegmentID: id, Start: o.Date}
			case !o.IsLegend && open != nil:
				end := o.Date
				open.End = &end
				periods = append(periods, *open)
				open = nil
			}
		}
		if open != nil {
			periods = append(periods, *open)
		}
	}
	return periods
}

// LegendAlert reports a segment whose status was lost.
type LegendAlert struct {
	Type      string `json:"type"`
	SegmentID int64  `json:"segment_id"`
	Message   string `json:"message"`
}

// LostLegendAlerts compares two consecutive snapshot days and reports every
// segment held yesterday but not today. names maps segment ids to display
// names; unknown ids fall back to the id.
func LostLegendAlerts(yesterday, today []LegendObservation, names map[int64]string) []LegendAlert {
	held := make(map[int64]bool, len(yesterday))
	for _, o := range yesterday {
		held[o.SegmentID] = o.IsLegend
	}

	var alerts []LegendAlert
	for _, o := range today {
		if o.IsLegend || !held[o.SegmentID] {
			continue
		}
		name, ok := names[o.SegmentID]
		if !ok {
			name = fmt.Sprintf("segment %d", o.SegmentID)
		}
		alerts = append(alerts, LegendAlert{
			Type:      "danger",
			SegmentID: o.SegmentID,
			Message:   "Local Legend perdue: " + name,
		})
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].SegmentID < alerts[j].SegmentID })
	return alerts
}
