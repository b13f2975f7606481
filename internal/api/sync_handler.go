package api

import (
	"context"
	"errors"
	"net/http"

	"runlab/stride/internal/constants"
	"runlab/stride/internal/jobs"
	"runlab/stride/internal/middleware"
	"runlab/stride/internal/providers"

	"go.uber.org/zap"
)

// Syncer is the part of jobs.SyncJob the HTTP layer drives.
type Syncer interface {
	RunSync(ctx context.Context, mode string) (*jobs.SyncResult, error)
	Status(ctx context.Context) (*jobs.SyncStatus, error)
}

// SyncHandler handles POST|GET /sync[?mode=full]. It runs the whole sync in
// the request and answers with the SyncResult.
func SyncHandler(syncer Syncer, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := jobs.ParseMode(r.URL.Query().Get("mode"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		requestID := middleware.RequestIDFromContext(r.Context())
		log.Infow("[SyncHandler] Sync triggered", "request_id", requestID, "mode", mode)

		result, err := syncer.RunSync(r.Context(), mode)
		if err != nil {
			status, message := syncErrorStatus(err)
			log.Errorw("[SyncHandler] Sync failed", "request_id", requestID, "status", status, "error", err)
			respondWithError(w, status, message)
			return
		}
		respondWithJSON(w, http.StatusOK, result)
	}
}

func syncErrorStatus(err error) (int, string) {
	var perr *providers.ProviderError
	switch {
	case errors.Is(err, jobs.ErrSyncInProgress):
		return http.StatusConflict, constants.GetErrorMessage(constants.ErrCodeSyncInProgress)
	case errors.As(err, &perr):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// SyncStatusHandler handles GET /sync/status
func SyncStatusHandler(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := syncer.Status(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to read sync status")
			return
		}
		respondWithSuccess(w, http.StatusOK, status)
	}
}
