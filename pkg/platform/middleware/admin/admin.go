package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	id "marketlevy/pkg/domain"
	request "marketlevy/pkg/platform/middleware/request"
	"marketlevy/pkg/requestcontext"
)

// HeaderActorID names the chairman or admin acting through the shared admin
// token. Read routes work without it; confirm and reject answer 401 when it
// is missing.
const HeaderActorID = "X-Actor-ID"

func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get("X-Admin-Token")
			// Use constant-time comparison to prevent timing attacks
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				writeUnauthorized(w, "admin token required")
				return
			}

			if raw := r.Header.Get(HeaderActorID); raw != "" {
				actorID, err := id.ParseUserID(raw)
				if err != nil {
					writeUnauthorized(w, "invalid actor id")
					return
				}
				ctx = requestcontext.WithActorID(ctx, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
