package middleware

import (
	"net/http"
	"strings"

	"runlab/stride/internal/auth"

	"go.uber.org/zap"
)

// OperatorAuthMiddleware requires a valid operator bearer token.
func OperatorAuthMiddleware(signer *auth.OperatorSigner, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized. Missing operator token", http.StatusUnauthorized)
				return
			}

			claims, err := signer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Warnw("Rejected operator token", "request_id", RequestIDFromContext(r.Context()), "error", err)
				http.Error(w, "Unauthorized. Invalid operator token", http.StatusUnauthorized)
				return
			}

			ctx := auth.SetOperatorClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
