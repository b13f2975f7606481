package analytics

import "math"

const riegelExponent = 1.06

// Riegel projects time t1 over d1 to distance d2.
func Riegel(t1, d1, d2 float64) float64 {
	return t1 * math.Pow(d2/d1, riegelExponent)
}

// Projection is one projected race time.
type Projection struct {
	Seconds        int    `json:"seconds"`
	Formatted      string `json:"formatted"`
	SourceTime     string `json:"source_time"`
	SourceDistance string `json:"source_distance"`
}

type projectionRoute struct {
	key    string
	source string
	target string
}

var projectionRoutes = []projectionRoute{
	{key: "semi_from_10k", source: "10k", target: "semi"},
	{key: "marathon_from_10k", source: "10k", target: "marathon"},
	{key: "marathon_from_semi", source: "semi", target: "marathon"},
}

// Projections projects the best 10k to semi and marathon and the best semi to
// marathon. best maps a distance type to its best time in seconds; missing or
// zero entries produce no projection.
func Projections(best map[string]int) map[string]Projection {
	out := make(map[string]Projection)
	for _, r := range projectionRoutes {
		t, ok := best[r.source]
		if !ok || t <= 0 {
			continue
		}
		secs := int(math.Round(Riegel(float64(t), RaceDistances[r.source], RaceDistances[r.target])))
		out[r.key] = Projection{
			Seconds:        secs,
			Formatted:      FormatDuration(secs),
			SourceTime:     FormatDuration(t),
			SourceDistance: r.source,
		}
	}
	return out
}

// RecordPoint is a personal record in chronological order.
type RecordPoint struct {
	Date         string
	DistanceType string
	Time         int
}

// ProjectionPoint is the projection set as it stood on a PR date.
type ProjectionPoint struct {
	Date        string                `json:"date"`
	Projections map[string]Projection `json:"projections"`
}

// ProjectionTimeline replays records in date order, keeping the running best
// per distance, and re-projects at every record date. Several records on one
// day collapse into one point. Dates with no projectable best are omitted.
func ProjectionTimeline(records []RecordPoint) []ProjectionPoint {
	best := make(map[string]int)
	var out []ProjectionPoint
	for _, r := range records {
		if cur, ok := best[r.DistanceType]; !ok || r.Time < cur {
			best[r.DistanceType] = r.Time
		}
		p := Projections(best)
		if len(p) == 0 {
			continue
		}
		point := ProjectionPoint{Date: Day(r.Date), Projections: p}
		if n := len(out); n > 0 && out[n-1].Date == point.Date {
			out[n-1] = point
			continue
		}
		out = append(out, point)
	}
	return out
}

// Confidence grades projections by trailing 90-day volume in km.
func Confidence(km90 float64) string {
	switch {
	case km90 > 300:
		return "high"
	case km90 > 150:
		return "medium"
	default:
		return "low"
	}
}
