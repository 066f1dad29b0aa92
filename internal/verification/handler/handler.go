package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	ledger "marketlevy/internal/ledger/models"
	"marketlevy/internal/verification/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/httputil"
	"marketlevy/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the gateway operations exposed to agents.
type Service interface {
	ScanAndVerify(ctx context.Context, agentID id.AgentID, code string) (*models.TraderVerificationResult, error)
	ScanAndPay(ctx context.Context, agentID id.AgentID, code string, amount decimal.Decimal) (*ledger.LevyPayment, error)
}

// Handler wires the agent scan endpoints to the gateway.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. The caller applies agent authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/agent/scan/verify", h.HandleVerify)
	r.Post("/agent/scan/pay", h.HandlePay)
}

// HandleVerify handles POST /agent/scan/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	agentID := requestcontext.AgentID(ctx)
	if agentID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ScanAndVerify(ctx, agentID, req.Code)
	if err != nil {
		h.logFailure(ctx, "scan verify failed", agentID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandlePay handles POST /agent/scan/pay.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	agentID := requestcontext.AgentID(ctx)
	if agentID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[PayRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	payment, err := h.service.ScanAndPay(ctx, agentID, req.Code, req.parsedAmount)
	if err != nil {
		h.logFailure(ctx, "scan pay failed", agentID, err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "levy collected",
		"request_id", requestID,
		"agent_id", agentID,
		"trader_id", payment.TraderID,
		"payment_id", payment.ID,
		"transaction_reference", payment.TransactionReference,
	)
	httputil.WriteJSON(w, http.StatusOK, FromPayment(payment))
}

// logFailure keeps business outcomes (already paid, duplicate) at info so
// they do not read as incidents.
func (h *Handler) logFailure(ctx context.Context, msg string, agentID id.AgentID, err error) {
	level := slog.LevelInfo
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"agent_id", agentID,
		"outcome", dErrors.CodeOf(err),
		"error", err,
	)
}
