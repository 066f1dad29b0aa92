package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketlevy/internal/ratelimit/metrics"
	"marketlevy/internal/ratelimit/models"
	"marketlevy/internal/ratelimit/store/bucket"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/requestcontext"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("store down")
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func agentRequest(agentID id.AgentID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/agent/scan/verify", nil)
	return req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
}

func TestPerAgent(t *testing.T) {
	t.Run("rejects an agent over the limit", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		mt := metrics.New(reg)
		h := New(bucket.NewInMemoryBucketStore(), 2, time.Minute, quiet, WithMetrics(mt)).PerAgent(okHandler())
		agentID := id.AgentID(uuid.New())

		for range 2 {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, agentRequest(agentID))
			require.Equal(t, http.StatusOK, rr.Code)
		}

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, agentRequest(agentID))
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Contains(t, rr.Body.String(), "rate_limit_exceeded")
		assert.Equal(t, 1.0, testutil.ToFloat64(mt.Rejected.WithLabelValues("/agent/scan/verify")))
	})

	t.Run("agents have separate budgets", func(t *testing.T) {
		h := New(bucket.NewInMemoryBucketStore(), 1, time.Minute, quiet).PerAgent(okHandler())

		first := httptest.NewRecorder()
		h.ServeHTTP(first, agentRequest(id.AgentID(uuid.New())))
		second := httptest.NewRecorder()
		h.ServeHTTP(second, agentRequest(id.AgentID(uuid.New())))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
	})

	t.Run("requests without an agent pass through", func(t *testing.T) {
		h := New(bucket.NewInMemoryBucketStore(), 1, time.Minute, quiet).PerAgent(okHandler())
		for range 3 {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		mt := metrics.New(reg)
		h := New(failingLimiter{}, 1, time.Minute, quiet, WithMetrics(mt)).PerAgent(okHandler())

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, agentRequest(id.AgentID(uuid.New())))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(mt.CheckFailures))
	})

	t.Run("zero limit disables the middleware", func(t *testing.T) {
		h := New(failingLimiter{}, 0, time.Minute, quiet).PerAgent(okHandler())
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, agentRequest(id.AgentID(uuid.New())))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
	})
}
