// Package analytics holds the stateless derivations behind every read
// endpoint: pace, cardiac efficiency, volume windows, Riegel projections and
// the local legend timeline. Nothing here touches the store.
package analytics

// DistanceBucket classifies a run as an attempt at a race distance.
// Both bounds are inclusive, in meters.
type DistanceBucket struct {
	Type string
	Min  float64
	Max  float64
}

// Buckets lists the record distances in ascending order.
var Buckets = []DistanceBucket{
	{Type: "5k", Min: 4500, Max: 5500},
	{Type: "10k", Min: 9500, Max: 10500},
	{Type: "semi", Min: 20500, Max: 22000},
	{Type: "marathon", Min: 41500, Max: 43500},
}

// RaceDistances are the official lengths in meters.
var RaceDistances = map[string]float64{
	"5k":       5000,
	"10k":      10000,
	"semi":     21097.5,
	"marathon": 42195,
}

// BucketFor returns the bucket containing distance, if any.
func BucketFor(distance float64) (DistanceBucket, bool) {
	for _, b := range Buckets {
		if distance >= b.Min && distance <= b.Max {
			return b, true
		}
	}
	return DistanceBucket{}, false
}
