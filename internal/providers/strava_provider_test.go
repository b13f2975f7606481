package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"runlab/stride/internal/auth"
	"runlab/stride/internal/config"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/metrics"
	"runlab/stride/internal/models/dtos"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type stubTokens struct {
	current   string
	refreshed string
	err       error
	refreshes int32
}

func (s *stubTokens) CurrentToken(ctx context.Context) (string, error) {
	return s.current, s.err
}

func (s *stubTokens) ForceRefresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&s.refreshes, 1)
	return s.refreshed, s.err
}

func newTestProvider(baseURL string, tokens auth.TokenProvider) (*StravaProvider, *metrics.MetricsRegistry) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	p := NewStravaProvider(config.StravaConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, tokens, NewRateLimiter(time.Millisecond, m), m, zap.NewNop().Sugar())
	return p, m
}

func TestStravaProvider_ListActivities_Success(t *testing.T) {
	after := time.Unix(1_709_200_000, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/athlete/activities" {
			t.Errorf("Expected path /athlete/activities, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("per_page") != "100" || q.Get("after") != "1709200000" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[
			{"id": 11, "type": "Run", "start_date_local": "2024-03-01T07:00:00Z", "distance": 10012.3,
			 "moving_time": 2400, "elapsed_time": 2460, "average_heartrate": 151.2,
			 "start_latlng": [48.85, 2.35], "athlete": {"id": 7}},
			{"id": 12, "type": "Ride", "start_date_local": "2024-03-02T07:00:00Z", "distance": 30000}
		]`))
	}))
	defer server.Close()

	provider, _ := newTestProvider(server.URL, &stubTokens{current: "tok"})

	result, err := provider.ListActivities(context.Background(), 2, 100, after)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 activities, got %d", len(result))
	}
	if result[0].Athlete.ID != 7 || result[0].MovingTime != 2400 {
		t.Errorf("Unexpected decode: %+v", result[0])
	}
	if len(result[0].StartLatlng) != 2 {
		t.Errorf("Expected start_latlng pair, got %v", result[0].StartLatlng)
	}
}

func TestStravaProvider_ListActivities_NoAfterBound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("after") {
			t.Errorf("Expected no after parameter, got %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	provider, _ := newTestProvider(server.URL, &stubTokens{current: "tok"})

	result, err := provider.ListActivities(context.Background(), 1, 100, time.Time{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected empty page, got %d", len(result))
	}
}

func TestStravaProvider_RetriesOnceAfter401(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Authorization Error"}`))
			return
		}
		json.NewEncoder(w).Encode(dtos.StravaActivity{ID: 99, Type: "Run"})
	}))
	defer server.Close()

	tokens := &stubTokens{current: "stale", refreshed: "fresh"}
	provider, _ := newTestProvider(server.URL, tokens)

	detail, err := provider.GetActivityDetail(context.Background(), 99)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if detail.ID != 99 {
		t.Errorf("Expected activity 99, got %d", detail.ID)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("Expected 2 upstream calls, got %d", calls)
	}
	if atomic.LoadInt32(&tokens.refreshes) != 1 {
		t.Errorf("Expected 1 forced refresh, got %d", tokens.refreshes)
	}
}

func TestStravaProvider_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Record Not Found"}`))
	}))
	defer server.Close()

	provider, m := newTestProvider(server.URL, &stubTokens{current: "tok"})

	_, err := provider.GetSegment(context.Background(), 5)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if pe.Code != constants.ErrCodeResourceNotFound || pe.Status != http.StatusNotFound {
		t.Errorf("Unexpected error %+v", pe)
	}
	if pe.Details != "Record Not Found" {
		t.Errorf("Expected Strava fault message, got %q", pe.Details)
	}

	got := testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("/segments/{id}", constants.ErrCodeResourceNotFound))
	if got != 1 {
		t.Errorf("Expected upstream metric 1, got %v", got)
	}
}

func TestStravaProvider_NoAthlete(t *testing.T) {
	provider, _ := newTestProvider("http://127.0.0.1:1", &stubTokens{err: auth.ErrNoAthlete})

	_, err := provider.ListActivities(context.Background(), 1, 100, time.Time{})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeNoAthlete {
		t.Fatalf("Expected NO_ATHLETE, got %v", err)
	}
	if !errors.Is(err, auth.ErrNoAthlete) {
		t.Error("Expected the token error to stay in the chain")
	}
}

func TestStravaProvider_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider, _ := newTestProvider(server.URL, &stubTokens{current: "tok"})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := provider.GetSegment(ctx, 1)
		var pe *ProviderError
		if !errors.As(err, &pe) || pe.Code != constants.ErrCodeUpstreamError {
			t.Fatalf("Call %d: expected UPSTREAM_ERROR, got %v", i, err)
		}
	}

	_, err := provider.GetSegment(ctx, 1)
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeCircuitOpen {
		t.Fatalf("Expected CIRCUIT_OPEN, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 5 {
		t.Errorf("Expected open breaker to short-circuit, got %d calls", calls)
	}
}

func TestStravaProvider_InvalidPage(t *testing.T) {
	provider, _ := newTestProvider("http://unused", &stubTokens{current: "tok"})

	_, err := provider.ListActivities(context.Background(), 0, 100, time.Time{})
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeInvalidRequest {
		t.Fatalf("Expected INVALID_REQUEST, got %v", err)
	}
}

func TestStravaProvider_DetailFailuresDoNotSuspendOtherEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/athlete/activities":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/segments/5":
			w.Write([]byte(`{"id": 5, "name": "Quai"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	provider, _ := newTestProvider(server.URL, &stubTokens{current: "tok"})
	ctx := context.Background()

	for i := int64(1); i <= 6; i++ {
		if _, err := provider.GetActivityDetail(ctx, i); err == nil {
			t.Fatalf("Detail %d: expected an error", i)
		}
	}
	_, err := provider.GetActivityDetail(ctx, 7)
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeCircuitOpen {
		t.Fatalf("Expected detail breaker to be open, got %v", err)
	}

	segment, err := provider.GetSegment(ctx, 5)
	if err != nil {
		t.Fatalf("Expected segment call to succeed, got %v", err)
	}
	if segment.ID != 5 {
		t.Errorf("Expected segment 5, got %d", segment.ID)
	}
	if _, err := provider.ListActivities(ctx, 1, 100, time.Time{}); err != nil {
		t.Fatalf("Expected activity listing to succeed, got %v", err)
	}
}
