package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/httputil"
	"marketlevy/pkg/platform/middleware/admin"
	"marketlevy/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the part of the ledger used by reconciliation endpoints.
type Service interface {
	RecordPayment(ctx context.Context, req models.RecordRequest) (*models.LevyPayment, error)
	ConfirmPayment(ctx context.Context, paymentID id.PaymentID, actorID id.UserID) (*models.LevyPayment, error)
	RejectPayment(ctx context.Context, paymentID id.PaymentID, actorID id.UserID, reason string) (*models.LevyPayment, error)
	GetPayment(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error)
	GetPaymentsForTrader(ctx context.Context, traderID id.TraderID, r models.DateRange) ([]*models.LevyPayment, error)
	Now() time.Time
	Location() *time.Location
}

// Handler serves chairman and admin reconciliation of levy payments.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. The caller applies admin authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/levies", h.HandleRecord)
	r.Get("/admin/levies/{id}", h.HandleGet)
	r.Post("/admin/levies/{id}/confirm", h.HandleConfirm)
	r.Post("/admin/levies/{id}/reject", h.HandleReject)
	r.Get("/admin/traders/{id}/levies", h.HandleListForTrader)
}

// HandleRecord handles POST /admin/levies: a chairman-initiated levy that
// stays pending until reconciled.
func (h *Handler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	payment, err := h.service.RecordPayment(ctx, req.toModel())
	if err != nil {
		h.fail(ctx, w, "record levy failed", err, "trader_id", req.TraderID)
		return
	}
	h.logger.InfoContext(ctx, "levy recorded",
		"request_id", requestID,
		"payment_id", payment.ID,
		"trader_id", payment.TraderID,
		"transaction_reference", payment.TransactionReference,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromPayment(payment))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	paymentID, err := id.ParsePaymentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payment, err := h.service.GetPayment(r.Context(), paymentID)
	if err != nil {
		h.fail(r.Context(), w, "get levy failed", err, "payment_id", paymentID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPayment(payment))
}

// HandleConfirm handles POST /admin/levies/{id}/confirm.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paymentID, err := id.ParsePaymentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	actorID, ok := requireActor(ctx, w)
	if !ok {
		return
	}
	payment, err := h.service.ConfirmPayment(ctx, paymentID, actorID)
	if err != nil {
		h.fail(ctx, w, "confirm levy failed", err, "payment_id", paymentID, "actor_id", actorID)
		return
	}
	h.logger.InfoContext(ctx, "levy confirmed",
		"request_id", requestcontext.RequestID(ctx),
		"payment_id", payment.ID,
		"actor_id", actorID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromPayment(payment))
}

// HandleReject handles POST /admin/levies/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	paymentID, err := id.ParsePaymentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	actorID, ok := requireActor(ctx, w)
	if !ok {
		return
	}
	payment, err := h.service.RejectPayment(ctx, paymentID, actorID, req.Reason)
	if err != nil {
		h.fail(ctx, w, "reject levy failed", err, "payment_id", paymentID, "actor_id", actorID)
		return
	}
	h.logger.InfoContext(ctx, "levy rejected",
		"request_id", requestID,
		"payment_id", payment.ID,
		"actor_id", actorID,
	)
	httputil.WriteJSON(w, http.StatusOK, FromPayment(payment))
}

// HandleListForTrader handles GET /admin/traders/{id}/levies?from=&to=.
// Dates are calendar days in the billing zone; both ends are inclusive.
// Without them the last 30 days are listed.
func (h *Handler) HandleListForTrader(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	traderID, err := id.ParseTraderID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	dateRange, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"),
		h.service.Now(), h.service.Location())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payments, err := h.service.GetPaymentsForTrader(ctx, traderID, dateRange)
	if err != nil {
		h.fail(ctx, w, "list levies failed", err, "trader_id", traderID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPayments(payments, dateRange))
}

// requireActor rejects reconciliation calls that do not name who is acting.
func requireActor(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, admin.HeaderActorID+" header is required"))
		return actorID, false
	}
	return actorID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, fields ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, fields...)
	h.logger.WarnContext(ctx, msg, args...)
	httputil.WriteError(w, err)
}
