package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marketlevy/internal/dashboard/models"
	"marketlevy/pkg/platform/httputil"
	"marketlevy/pkg/requestcontext"
)

// Service serves dashboards, cached or fresh.
type Service interface {
	Dashboard(ctx context.Context, label models.WindowLabel) (*models.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/dashboard", h.HandleDashboard)
}

// HandleDashboard handles GET /admin/dashboard?window=<label>.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	label, err := models.ParseWindowLabel(r.URL.Query().Get("window"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.service.Dashboard(ctx, label)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard failed",
			"request_id", requestcontext.RequestID(ctx),
			"window", label,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
