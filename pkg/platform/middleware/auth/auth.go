package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "marketlevy/pkg/domain"
	request "marketlevy/pkg/platform/middleware/request"
	"marketlevy/pkg/requestcontext"
)

// AgentValidator validates a bearer token and returns the field agent it was
// issued to.
type AgentValidator interface {
	ValidateAgent(tokenString string) (id.AgentID, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAgent rejects requests without a valid agent bearer token and
// stores the agent id in the request context.
func RequireAgent(validator AgentValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			agentID, err := validator.ValidateAgent(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithAgentID(ctx, agentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
