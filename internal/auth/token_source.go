package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"runlab/stride/internal/config"
	"runlab/stride/internal/models/gorm"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ErrNoAthlete is returned when nobody has connected a Strava account yet.
var ErrNoAthlete = errors.New("no athlete found, authenticate with Strava first")

// refreshLeeway refreshes tokens that expire within the next minute.
const refreshLeeway = time.Minute

// TokenProvider yields a valid Strava access token.
// It is safe for concurrent use by multiple goroutines.
type TokenProvider interface {
	CurrentToken(ctx context.Context) (string, error)
	ForceRefresh(ctx context.Context) (string, error)
}

// AthleteStore is the persistence AthleteTokenSource needs.
type AthleteStore interface {
	Get(ctx context.Context) (*gorm.Athlete, error)
	UpdateTokens(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error
}

// AthleteTokenSource reads the athlete row and refreshes through the Strava
// token endpoint when the access token is about to expire. Concurrent callers
// share a single refresh exchange.
type AthleteTokenSource struct {
	store      AthleteStore
	oauth      *oauth2.Config
	httpClient *http.Client
	log        *zap.SugaredLogger
	now        func() time.Time

	mu    sync.Mutex
	group singleflight.Group
}

func NewAthleteTokenSource(store AthleteStore, cfg config.StravaConfig, log *zap.SugaredLogger) *AthleteTokenSource {
	return &AthleteTokenSource{
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		log:        log,
		now:        time.Now,
	}
}

// CurrentToken returns the stored access token, refreshing it first when it
// is expired or about to expire.
func (s *AthleteTokenSource) CurrentToken(ctx context.Context) (string, error) {
	athlete, err := s.athlete(ctx)
	if err != nil {
		return "", err
	}

	if s.valid(athlete) {
		return athlete.AccessToken, nil
	}
	return s.refresh(ctx, false)
}

// ForceRefresh exchanges the refresh token regardless of expiry. Used after
// the API rejected the current token.
func (s *AthleteTokenSource) ForceRefresh(ctx context.Context) (string, error) {
	return s.refresh(ctx, true)
}

func (s *AthleteTokenSource) valid(athlete *gorm.Athlete) bool {
	expiry := time.Unix(athlete.TokenExpiresAt, 0)
	return athlete.AccessToken != "" && s.now().Add(refreshLeeway).Before(expiry)
}

func (s *AthleteTokenSource) refresh(ctx context.Context, force bool) (string, error) {
	key := "refresh"
	if force {
		key = "force"
	}
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.exchange(ctx, force)
	})
	if err != nil {
		return "", err
	}
	if shared {
		s.log.Debugw("Joined in-flight token refresh")
	}
	return v.(string), nil
}

// exchange runs the refresh grant and persists the new pair. Callers hold mu.
func (s *AthleteTokenSource) exchange(ctx context.Context, force bool) (string, error) {
	// Re-read under the lock: a refresh that finished meanwhile wins.
	athlete, err := s.athlete(ctx)
	if err != nil {
		return "", err
	}
	if !force && s.valid(athlete) {
		return athlete.AccessToken, nil
	}
	if athlete.RefreshToken == "" {
		return "", fmt.Errorf("athlete %d has no refresh token", athlete.ID)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	// An empty access token forces the oauth2 source to hit the token endpoint.
	tok, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: athlete.RefreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("refresh strava token: %w", err)
	}

	expiresAt := tok.Expiry
	if v, ok := tok.Extra("expires_at").(float64); ok && v > 0 {
		expiresAt = time.Unix(int64(v), 0)
	}

	if err := s.store.UpdateTokens(ctx, athlete.ID, tok.AccessToken, tok.RefreshToken, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}

	s.log.Infow("Refreshed Strava access token", "athlete_id", athlete.ID, "expires_at", expiresAt.UTC())
	return tok.AccessToken, nil
}

func (s *AthleteTokenSource) athlete(ctx context.Context) (*gorm.Athlete, error) {
	athlete, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load athlete: %w", err)
	}
	if athlete == nil {
		return nil, ErrNoAthlete
	}
	return athlete, nil
}
