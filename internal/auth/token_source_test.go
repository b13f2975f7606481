package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"runlab/stride/internal/config"
	"runlab/stride/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryAthleteStore struct {
	mu      sync.Mutex
	athlete *gorm.Athlete
	updates int
}

func (m *memoryAthleteStore) Get(ctx context.Context) (*gorm.Athlete, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.athlete == nil {
		return nil, nil
	}
	cp := *m.athlete
	return &cp, nil
}

func (m *memoryAthleteStore) UpdateTokens(ctx context.Context, id int64, access, refresh string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.athlete.AccessToken = access
	m.athlete.RefreshToken = refresh
	m.athlete.TokenExpiresAt = expiresAt.Unix()
	m.updates++
	return nil
}

func newTokenServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("Expected refresh_token grant, got %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "cid" {
			t.Errorf("Expected client_id in body, got %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "old-refresh" {
			t.Errorf("Expected old-refresh, got %q", got)
		}
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token_type":    "Bearer",
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"expires_in":    21600,
			"expires_at":    1900000000,
		})
	}))
}

func newSource(store AthleteStore, tokenURL string, now time.Time) *AthleteTokenSource {
	src := NewAthleteTokenSource(store, config.StravaConfig{
		TokenURL:       tokenURL,
		ClientID:       "cid",
		ClientSecret:   "secret",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop().Sugar())
	src.now = func() time.Time { return now }
	return src
}

func TestAthleteTokenSource_NoAthlete(t *testing.T) {
	src := newSource(&memoryAthleteStore{}, "http://unused", time.Now())

	_, err := src.CurrentToken(context.Background())
	if !errors.Is(err, ErrNoAthlete) {
		t.Fatalf("Expected ErrNoAthlete, got %v", err)
	}
}

func TestAthleteTokenSource_ValidTokenSkipsRefresh(t *testing.T) {
	var calls int32
	server := newTokenServer(t, &calls)
	defer server.Close()

	now := time.Unix(1_700_000_000, 0)
	store := &memoryAthleteStore{athlete: &gorm.Athlete{
		ID: 1, AccessToken: "current", RefreshToken: "old-refresh",
		TokenExpiresAt: now.Add(time.Hour).Unix(),
	}}

	token, err := newSource(store, server.URL, now).CurrentToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "current", token)
	assert.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

func TestAthleteTokenSource_ExpiredTokenRefreshesOnce(t *testing.T) {
	var calls int32
	server := newTokenServer(t, &calls)
	defer server.Close()

	now := time.Unix(1_700_000_000, 0)
	store := &memoryAthleteStore{athlete: &gorm.Athlete{
		ID: 1, AccessToken: "stale", RefreshToken: "old-refresh",
		TokenExpiresAt: now.Add(30 * time.Second).Unix(),
	}}
	src := newSource(store, server.URL, now)

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := src.CurrentToken(context.Background())
			if err != nil {
				t.Errorf("CurrentToken: %v", err)
			}
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	for _, tok := range tokens {
		assert.Equal(t, "new-access", tok)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, store.updates)
	assert.Equal(t, "new-refresh", store.athlete.RefreshToken)
	assert.EqualValues(t, 1900000000, store.athlete.TokenExpiresAt)
}

func TestAthleteTokenSource_RefreshFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Bad Request","errors":[{"resource":"RefreshToken","code":"invalid"}]}`))
	}))
	defer server.Close()

	store := &memoryAthleteStore{athlete: &gorm.Athlete{ID: 1, RefreshToken: "old-refresh"}}

	_, err := newSource(store, server.URL, time.Now()).ForceRefresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, store.updates)
}
