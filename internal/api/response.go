package api

import (
	"encoding/json"
	"net/http"
	"time"

	"runlab/stride/internal/constants"
)

// APIResponse is the envelope every read endpoint answers with.
type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
	Data      *T        `json:"data,omitempty"`
}

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := APIResponse[T]{
		Status:    string(constants.APIStatusOk),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := APIResponse[any]{
		Status:    string(constants.APIStatusError),
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// respondWithJSON writes v as the whole body, without the envelope.
func respondWithJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
