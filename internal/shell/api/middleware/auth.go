// Package middleware provides HTTP middleware for the CMS API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/auth"
)

// =============================================================================
// Token Verifier
// =============================================================================

// TokenVerifier verifies a bearer token at a given time.
// *auth.Issuer implements this interface.
type TokenVerifier interface {
	Parse(token string, now time.Time) (auth.Context, error)
}

// =============================================================================
// Require Admin Middleware
// =============================================================================

// RequireAdmin rejects requests without a valid admin bearer token and stores
// the token's auth context in the request context.
func RequireAdmin(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.BearerToken(r.Header)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required", "unauthorized")
				return
			}

			ctx, err := verifier.Parse(token, time.Now())
			if err != nil {
				logger.Warn("rejected admin token",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token", "invalid_token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), ctx)))
		})
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSONError writes an error in the API's error format.
func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
