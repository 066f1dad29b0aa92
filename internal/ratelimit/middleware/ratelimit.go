package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"marketlevy/internal/ratelimit/metrics"
	"marketlevy/internal/ratelimit/models"
	"marketlevy/pkg/platform/httputil"
	request "marketlevy/pkg/platform/middleware/request"
	"marketlevy/pkg/requestcontext"
)

// Limiter records one request against a key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Middleware struct {
	limiter  Limiter
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mt
	}
}

func New(limiter Limiter, limit int, window time.Duration, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		limit:   limit,
		window:  window,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.limit <= 0 {
		m.disabled = true
	}
	if m.disabled {
		logger.Info("agent rate limiting disabled")
	}
	return m
}

// PerAgent limits authenticated agents. It must run after the agent auth
// middleware; requests without an agent pass through untouched. A failing
// limiter lets the request through.
func (m *Middleware) PerAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		agentID := requestcontext.AgentID(ctx)
		if m.disabled || agentID.IsNil() {
			next.ServeHTTP(w, r)
			return
		}

		result, err := m.limiter.Allow(ctx, models.AgentKey(agentID.String()), m.limit, m.window)
		if err != nil {
			m.metrics.IncrementCheckFailure()
			m.logger.ErrorContext(ctx, "failed to check agent rate limit",
				"error", err,
				"agent_id", agentID.String(),
				"request_id", request.GetRequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.metrics.IncrementRejected(r.URL.Path)
			m.logger.WarnContext(ctx, "agent rate limit exceeded",
				"agent_id", agentID.String(),
				"request_id", request.GetRequestID(ctx),
			)
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Too many scans from this agent. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
