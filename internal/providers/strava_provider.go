package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"runlab/stride/internal/auth"
	"runlab/stride/internal/config"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/metrics"
	"runlab/stride/internal/models/dtos"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// StravaProvider calls the Strava v3 REST API. Every call waits on the shared
// RateLimiter, authenticates through the TokenProvider and runs inside a
// circuit breaker scoped to its endpoint.
type StravaProvider struct {
	BaseURL string
	Client  *http.Client
	Tokens  auth.TokenProvider
	Limiter *RateLimiter

	breakers map[string]*gobreaker.CircuitBreaker[int]
	metrics  *metrics.MetricsRegistry
	log      *zap.SugaredLogger
}

func NewStravaProvider(
	cfg config.StravaConfig,
	tokens auth.TokenProvider,
	limiter *RateLimiter,
	m *metrics.MetricsRegistry,
	log *zap.SugaredLogger,
) *StravaProvider {
	return &StravaProvider{
		BaseURL: cfg.BaseURL,
		Client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		Tokens:   tokens,
		Limiter:  limiter,
		breakers: newBreakers(m, log),
		metrics:  m,
		log:      log,
	}
}

// ListActivities fetches GET /athlete/activities.
func (p *StravaProvider) ListActivities(ctx context.Context, page, perPage int, after time.Time) ([]dtos.StravaActivity, error) {
	if page < 1 {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: "Page number must be greater than 0",
		}
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	if !after.IsZero() {
		query.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	var result []dtos.StravaActivity
	if err := p.doGET(ctx, endpointActivities, endpointActivities, query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetActivityDetail fetches GET /activities/{id}.
func (p *StravaProvider) GetActivityDetail(ctx context.Context, activityID int64) (*dtos.StravaActivity, error) {
	var result dtos.StravaActivity
	endpoint := fmt.Sprintf("/activities/%d", activityID)
	if err := p.doGET(ctx, endpoint, endpointDetail, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSegment fetches GET /segments/{id}.
func (p *StravaProvider) GetSegment(ctx context.Context, segmentID int64) (*dtos.StravaSegment, error) {
	var result dtos.StravaSegment
	endpoint := fmt.Sprintf("/segments/%d", segmentID)
	if err := p.doGET(ctx, endpoint, endpointSegment, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ============================================================================
// HTTP Helper Methods
// ============================================================================

// doGET runs an authenticated GET through the breaker for label and decodes
// the JSON body into result. label is the endpoint template, also used for
// metrics.
func (p *StravaProvider) doGET(ctx context.Context, endpoint, label string, query url.Values, result interface{}) error {
	_, err := p.breakers[label].Execute(func() (int, error) {
		return p.fetch(ctx, endpoint, query, result)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &ProviderError{
			Code:    constants.ErrCodeCircuitOpen,
			Message: constants.GetErrorMessage(constants.ErrCodeCircuitOpen),
			Err:     err,
		}
	}

	p.observe(label, err)
	return err
}

func (p *StravaProvider) fetch(ctx context.Context, endpoint string, query url.Values, result interface{}) (int, error) {
	token, err := p.Tokens.CurrentToken(ctx)
	if err != nil {
		return 0, tokenError(err)
	}

	resp, body, err := p.send(ctx, endpoint, query, token)
	if err != nil {
		return 0, err
	}

	// A rejected token is refreshed once and the call retried.
	if resp.StatusCode == http.StatusUnauthorized {
		p.log.Warnw("Got 401 Unauthorized, attempting force refresh", "endpoint", endpoint)
		token, err = p.Tokens.ForceRefresh(ctx)
		if err != nil {
			return resp.StatusCode, tokenError(err)
		}
		resp, body, err = p.send(ctx, endpoint, query, token)
		if err != nil {
			return 0, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, p.buildHTTPError(resp.StatusCode, endpoint, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: "Failed to decode response",
			Status:  resp.StatusCode,
			Details: string(body),
			Err:     err,
		}
	}
	return resp.StatusCode, nil
}

// send waits for the limiter, issues the request and reads the whole body.
func (p *StravaProvider) send(ctx context.Context, endpoint string, query url.Values, token string) (*http.Response, []byte, error) {
	if err := p.Limiter.Wait(ctx); err != nil {
		return nil, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Rate limiter wait aborted",
			Err:     err,
		}
	}

	target := p.BaseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return resp, body, nil
}

// buildHTTPError creates appropriate error based on status code
func (p *StravaProvider) buildHTTPError(statusCode int, endpoint string, body string) error {
	details := body
	var fault dtos.StravaFault
	if json.Unmarshal([]byte(body), &fault) == nil && fault.Message != "" {
		details = fault.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeAuthenticationFailed,
			Message: fmt.Sprintf("Authentication failed for endpoint %s", endpoint),
			Status:  statusCode,
			Details: details,
		}
	case http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeResourceNotFound,
			Message: fmt.Sprintf("Resource not found: %s", endpoint),
			Status:  statusCode,
			Details: details,
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Status:  statusCode,
			Details: details,
		}
	case http.StatusBadRequest:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("Bad request to %s", endpoint),
			Status:  statusCode,
			Details: details,
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeUpstreamError,
			Message: fmt.Sprintf("HTTP %d from %s", statusCode, endpoint),
			Status:  statusCode,
			Details: details,
		}
	}
}

func (p *StravaProvider) observe(label string, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		var pe *ProviderError
		if errors.As(err, &pe) {
			outcome = pe.Code
		}
	}
	p.metrics.UpstreamRequestsTotal.WithLabelValues(label, outcome).Inc()
}

func tokenError(err error) error {
	if errors.Is(err, auth.ErrNoAthlete) {
		return &ProviderError{
			Code:    constants.ErrCodeNoAthlete,
			Message: constants.GetErrorMessage(constants.ErrCodeNoAthlete),
			Err:     err,
		}
	}
	return &ProviderError{
		Code:    constants.ErrCodeTokenRefreshFailed,
		Message: constants.GetErrorMessage(constants.ErrCodeTokenRefreshFailed),
		Err:     err,
	}
}
