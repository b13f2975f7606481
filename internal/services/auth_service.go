package services

import (
	"context"
	"fmt"
)

type AthleteProfile struct {
	ID         int64   `json:"id"`
	Username   *string `json:"username"`
	Firstname  *string `json:"firstname"`
	Lastname   *string `json:"lastname"`
	ProfilePic *string `json:"profile_pic"`
}

type AuthStatus struct {
	Authenticated bool            `json:"authenticated"`
	Athlete       *AthleteProfile `json:"athlete,omitempty"`
}

// AuthStatus reports whether an athlete is connected. Tokens are never
// exposed.
func (s *AnalyticsService) AuthStatus(ctx context.Context) (*AuthStatus, error) {
	a, err := s.athletes.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load athlete: %w", err)
	}
	if a == nil {
		return &AuthStatus{}, nil
	}
	return &AuthStatus{
		Authenticated: true,
		Athlete: &AthleteProfile{
			ID:         a.ID,
			Username:   a.Username,
			Firstname:  a.Firstname,
			Lastname:   a.Lastname,
			ProfilePic: a.ProfilePic,
		},
	}, nil
}
