package providers

import (
	"context"
	"fmt"
	"time"

	"runlab/stride/internal/models/dtos"
)

// ActivitySource is the slice of the Strava API the sync pipeline consumes.
type ActivitySource interface {
	// ListActivities returns one page of the athlete's activities, newest
	// first. A zero after disables the lower time bound.
	ListActivities(ctx context.Context, page, perPage int, after time.Time) ([]dtos.StravaActivity, error)

	// GetActivityDetail returns one activity with its segment efforts.
	GetActivityDetail(ctx context.Context, activityID int64) (*dtos.StravaActivity, error)

	// GetSegment returns a detailed segment including the athlete's local
	// legend status.
	GetSegment(ctx context.Context, segmentID int64) (*dtos.StravaSegment, error)
}

// ProviderError is returned for every failed upstream call.
type ProviderError struct {
	Code    string
	Message string
	Status  int
	Details string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
