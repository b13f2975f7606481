package constants

// Upstream (Strava) error codes

// Credential-related errors
const (
	ErrCodeNoAthlete            = "NO_ATHLETE"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeTokenRefreshFailed   = "TOKEN_REFRESH_FAILED"
)

// Transport errors
const (
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeNetworkError     = "NETWORK_ERROR"
	ErrCodeCircuitOpen      = "CIRCUIT_OPEN"
	ErrCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	ErrCodeUpstreamError    = "UPSTREAM_ERROR"
	ErrCodeInvalidResponse  = "INVALID_RESPONSE"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
)

// Sync errors
const (
	ErrCodeSyncInProgress = "SYNC_IN_PROGRESS"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeNoAthlete:            "No athlete found. Please authenticate with Strava first",
	ErrCodeAuthenticationFailed: "Authentication with Strava failed",
	ErrCodeTokenRefreshFailed:   "The Strava access token could not be refreshed",

	ErrCodeRateLimited:      "Strava rate limit exceeded. Please try again later",
	ErrCodeNetworkError:     "Unable to connect to Strava",
	ErrCodeCircuitOpen:      "Strava calls are suspended after repeated failures",
	ErrCodeResourceNotFound: "The requested Strava resource was not found",
	ErrCodeUpstreamError:    "Strava returned an unexpected error",
	ErrCodeInvalidResponse:  "Strava returned a response that could not be decoded",
	ErrCodeInvalidRequest:   "The request to Strava was invalid",

	ErrCodeSyncInProgress: "Another sync is already running",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
