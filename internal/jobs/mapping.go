package jobs

import (
	"strconv"
	"strings"

	"runlab/stride/internal/models/dtos"
	gormModels "runlab/stride/internal/models/gorm"
)

// formatLatLng stores a coordinate pair as "[lat, lng]".
func formatLatLng(pair []float64) *string {
	if len(pair) == 0 {
		return nil
	}
	parts := make([]string, len(pair))
	for i, v := range pair {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := "[" + strings.Join(parts, ", ") + "]"
	return &s
}

func activityFromStrava(a dtos.StravaActivity) gormModels.Activity {
	var athleteID *int64
	if a.Athlete.ID != 0 {
		id := a.Athlete.ID
		athleteID = &id
	}
	return gormModels.Activity{
		ID:                 a.ID,
		AthleteID:          athleteID,
		Name:               a.Name,
		Date:               a.StartDateLocal,
		Distance:           a.Distance,
		MovingTime:         a.MovingTime,
		ElapsedTime:        a.ElapsedTime,
		AverageSpeed:       a.AverageSpeed,
		MaxSpeed:           a.MaxSpeed,
		TotalElevationGain: a.TotalElevationGain,
		AverageHeartrate:   a.AverageHeartrate,
		MaxHeartrate:       a.MaxHeartrate,
		Type:               a.Type,
		SufferScore:        a.SufferScore,
		StartLatlng:        formatLatLng(a.StartLatlng),
		AverageCadence:     a.AverageCadence,
		Calories:           a.Calories,
	}
}

func segmentFromStrava(s dtos.StravaSegment) gormModels.Segment {
	return gormModels.Segment{
		ID:            s.ID,
		Name:          s.Name,
		Distance:      s.Distance,
		ElevationGain: s.TotalElevationGain,
		AverageGrade:  s.AverageGrade,
		ClimbCategory: s.ClimbCategory,
		City:          s.City,
		State:         s.State,
		StartLatlng:   formatLatLng(s.StartLatlng),
		EndLatlng:     formatLatLng(s.EndLatlng),
	}
}

// effortsFromDetail splits an activity detail into its segments (deduplicated,
// first occurrence wins) and efforts. Efforts without a start date inherit the
// activity's.
func effortsFromDetail(activity gormModels.Activity, detail *dtos.StravaActivity) ([]gormModels.Segment, []gormModels.SegmentEffort) {
	seen := make(map[int64]bool)
	var segments []gormModels.Segment
	efforts := make([]gormModels.SegmentEffort, 0, len(detail.SegmentEfforts))

	for _, e := range detail.SegmentEfforts {
		if !seen[e.Segment.ID] {
			seen[e.Segment.ID] = true
			segments = append(segments, segmentFromStrava(e.Segment))
		}
		date := e.StartDateLocal
		if date == "" {
			date = activity.Date
		}
		efforts = append(efforts, gormModels.SegmentEffort{
			ID:               e.ID,
			ActivityID:       activity.ID,
			SegmentID:        e.Segment.ID,
			ElapsedTime:      e.ElapsedTime,
			MovingTime:       e.MovingTime,
			Date:             date,
			PRRank:           e.PRRank,
			KOMRank:          e.KOMRank,
			AverageHeartrate: e.AverageHeartrate,
			MaxHeartrate:     e.MaxHeartrate,
		})
	}
	return segments, efforts
}
