package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ugclabs/ugc-auth/internal/api/response"
	"github.com/ugclabs/ugc-auth/internal/auth"
)

const identityKey contextKey = "identity"

// Auth is middleware that extracts the Authorization: Bearer token and
// verifies it against the session issuer. A missing token returns 401; a
// token that fails verification returns 403 with a uniform message, while
// the expired-vs-invalid distinction is only logged.
func Auth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenString == header || tokenString == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", requestID)
				return
			}

			identity, err := issuer.Verify(tokenString)
			if err != nil {
				slog.Debug("session credential rejected", "error", err, "requestId", requestID)
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Invalid token", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
