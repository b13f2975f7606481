package analytics

import (
	"fmt"
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

// Run is the slice of an activity the volume series need.
type Run struct {
	Date       string // ISO-8601; only the first ten characters are read
	Distance   float64
	MovingTime int
	Elevation  float64
}

// Day returns the calendar day of an ISO-8601 timestamp.
func Day(date string) string {
	if len(date) < len(dayLayout) {
		return date
	}
	return date[:len(dayLayout)]
}

// DailyKm sums distance per day, in km.
func DailyKm(runs []Run) map[string]float64 {
	daily := make(map[string]float64)
	for _, r := range runs {
		daily[Day(r.Date)] += r.Distance / 1000
	}
	return daily
}

// RollingPoint is one day of a rolling series.
type RollingPoint struct {
	Date string  `json:"date"`
	Km   float64 `json:"km"`
}

// RollingVolume evaluates the trailing n-day sum for every day in
// [today-2n, today]. The window ending at d covers [d-(n-1), d].
func RollingVolume(daily map[string]float64, n int, today time.Time) []RollingPoint {
	if n <= 0 {
		return nil
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -2*n)

	points := make([]RollingPoint, 0, 2*n+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += daily[d.AddDate(0, 0, -i).Format(dayLayout)]
		}
		points = append(points, RollingPoint{Date: d.Format(dayLayout), Km: Round(sum, 1)})
	}
	return points
}

// WindowKm sums daily km over the n days ending at end, inclusive.
func WindowKm(daily map[string]float64, end time.Time, n int) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += daily[end.AddDate(0, 0, -i).Format(dayLayout)]
	}
	return sum
}

// PeriodVolume aggregates runs over a week, month or year.
type PeriodVolume struct {
	Period     string  `json:"period"`
	Km         float64 `json:"km"`
	Runs       int     `json:"runs"`
	MovingTime int     `json:"moving_time"`
	Elevation  float64 `json:"elevation"`
}

// WeeklyVolume groups by ISO week, labelled YYYY-Www.
func WeeklyVolume(runs []Run) []PeriodVolume {
	return groupBy(runs, func(t time.Time) string {
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	})
}

// MonthlyVolume groups by calendar month, labelled YYYY-MM.
func MonthlyVolume(runs []Run) []PeriodVolume {
	return groupBy(runs, func(t time.Time) string { return t.Format("2006-01") })
}

// YearlyVolume groups by calendar year.
func YearlyVolume(runs []Run) []PeriodVolume {
	return groupBy(runs, func(t time.Time) string { return t.Format("2006") })
}

func groupBy(runs []Run, key func(time.Time) string) []PeriodVolume {
	index := make(map[string]*PeriodVolume)
	for _, r := range runs {
		t, err := time.Parse(dayLayout, Day(r.Date))
		if err != nil {
			continue
		}
		k := key(t)
		p, ok := index[k]
		if !ok {
			p = &PeriodVolume{Period: k}
			index[k] = p
		}
		p.Km += r.Distance / 1000
		p.Runs++
		p.MovingTime += r.MovingTime
		p.Elevation += r.Elevation
	}

	out := make([]PeriodVolume, 0, len(index))
	for _, p := range index {
		p.Km = Round(p.Km, 1)
		p.Elevation = Round(p.Elevation, 0)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// MovingAverage averages each value with up to window-1 predecessors. A
// window below 1 is treated as 1.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for _, v := range values[lo : i+1] {
			sum += v
		}
		out[i] = Round(sum/float64(i+1-lo), 1)
	}
	return out
}
