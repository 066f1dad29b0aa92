package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"marketlevy/pkg/platform/httputil"
	"marketlevy/pkg/platform/middleware/admin"
	"marketlevy/pkg/platform/middleware/auth"
	"marketlevy/pkg/platform/middleware/metadata"
	request "marketlevy/pkg/platform/middleware/request"
	"marketlevy/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes on a router group.
type Registrar interface {
	Register(r chi.Router)
}

// Config collects everything the router needs. Agent routes sit behind bearer
// token validation; admin routes behind the shared admin token.
type Config struct {
	Logger         *slog.Logger
	Observer       request.Observer
	AgentValidator auth.AgentValidator
	AdminToken     string
	Metrics        http.Handler
	Agent          []Registrar
	Admin          []Registrar

	// AgentLimiter runs after agent authentication. Optional.
	AgentLimiter func(http.Handler) http.Handler
	// HealthChecks are run by /healthz; any failure turns it into a 503.
	HealthChecks map[string]func(ctx context.Context) error
}

// NewRouter wires the public endpoints.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(logger, cfg.Observer))

	r.Get("/healthz", healthz(cfg.HealthChecks))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAgent(cfg.AgentValidator, logger))
		if cfg.AgentLimiter != nil {
			r.Use(cfg.AgentLimiter)
		}
		for _, m := range cfg.Agent {
			m.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
		for _, m := range cfg.Admin {
			m.Register(r)
		}
	})
	return r
}

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]func(ctx context.Context) error) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		res := healthResponse{Status: "ok"}
		status := http.StatusOK
		for _, name := range names {
			if res.Checks == nil {
				res.Checks = make(map[string]string, len(names))
			}
			if err := checks[name](ctx); err != nil {
				res.Checks[name] = "unavailable"
				res.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			res.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, res)
	}
}
