package analytics

import (
	"fmt"
	"math"
)

// Pace returns seconds per kilometre. ok is false for a zero distance.
func Pace(movingTime int, distanceM float64) (secPerKm float64, ok bool) {
	if distanceM <= 0 {
		return 0, false
	}
	return float64(movingTime) / (distanceM / 1000), true
}

// FormatDuration renders seconds as M:SS, or HhMM:SS from one hour up.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPace renders a seconds-per-km pace as M:SS/km.
func FormatPace(secPerKm float64) string {
	if secPerKm <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d/km", int(secPerKm)/60, int(secPerKm)%60)
}

// RacePace is the per-km pace of a time over a named race distance.
func RacePace(seconds int, distanceType string) string {
	d, ok := RaceDistances[distanceType]
	if !ok || seconds <= 0 {
		return ""
	}
	p, _ := Pace(seconds, d)
	return FormatPace(p)
}

// CardiacEfficiency is km/h per heartbeat per minute, rounded to four
// decimals. It is nil when either input is missing or the heart rate is zero.
func CardiacEfficiency(avgSpeed, avgHR *float64) *float64 {
	if avgSpeed == nil || avgHR == nil || *avgHR == 0 {
		return nil
	}
	v := Round(*avgSpeed*3.6 / *avgHR, 4)
	return &v
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
