// Package service is the verification gateway: the single entry point for a
// field agent's device. Every call writes exactly one audit event and fails
// if that write fails.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	directory "marketlevy/internal/directory/models"
	"marketlevy/internal/identity"
	ledger "marketlevy/internal/ledger/models"
	"marketlevy/internal/verification/metrics"
	"marketlevy/internal/verification/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/audit"
	"marketlevy/pkg/platform/sentinel"
	"marketlevy/pkg/requestcontext"
)

const tracerName = "marketlevy/internal/verification"

const (
	opVerify = "scan_and_verify"
	opPay    = "scan_and_pay"
)

type Service struct {
	ledger    Ledger
	directory Directory
	audit     AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New requires an audit publisher: the gateway cannot run without one.
func New(ledger Ledger, directory Directory, publisher AuditPublisher, opts ...Option) *Service {
	s := &Service{
		ledger:    ledger,
		directory: directory,
		audit:     publisher,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scan is the state one call accumulates for its audit event.
type scan struct {
	op       string
	action   audit.AuditEvent
	agentID  id.AgentID
	traderID id.TraderID
	marketID id.MarketID
	payment  *ledger.LevyPayment
	resumed  bool
}

// ScanAndVerify decodes code and reports whether the trader owes the levy
// for the current billing window.
func (s *Service) ScanAndVerify(ctx context.Context, agentID id.AgentID, code string) (_ *models.TraderVerificationResult, err error) {
	sc := &scan{op: opVerify, action: audit.EventTraderScanned, agentID: agentID}
	ctx, span := s.tracer.Start(ctx, "verification."+opVerify)
	started := time.Now()
	defer func() { err = s.finish(ctx, span, sc, started, err) }()

	if agentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "agent id is required")
	}
	result, _, _, err := s.verify(ctx, sc, code)
	return result, err
}

// ScanAndPay collects the levy for the scanned trader and settles it
// immediately: cash in the agent's hand is treated as settled.
//
// A pending payment left in the window by an interrupted call is resumed
// when it was recorded by the same agent for the same amount. Any other
// pending payment yields *ledger.PendingConfirmationError. Ledger errors
// are returned unchanged.
func (s *Service) ScanAndPay(ctx context.Context, agentID id.AgentID, code string, amount decimal.Decimal) (_ *ledger.LevyPayment, err error) {
	sc := &scan{op: opPay, action: audit.EventScanPayAttempt, agentID: agentID}
	ctx, span := s.tracer.Start(ctx, "verification."+opPay,
		trace.WithAttributes(attribute.String("levy.amount", amount.String())))
	started := time.Now()
	defer func() { err = s.finish(ctx, span, sc, started, err) }()

	if agentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "agent id is required")
	}
	result, trader, latest, err := s.verify(ctx, sc, code)
	if err != nil {
		return nil, err
	}
	window := ledger.Window{Start: result.WindowStart, End: result.WindowEnd}
	if !result.PaymentDue {
		sc.payment = latest
		return nil, &models.AlreadyPaidError{TraderID: trader.ID, Window: window, LastPayment: latest}
	}

	open, err := s.ledger.OpenPayment(ctx, trader.ID, window)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return s.resume(ctx, sc, open, amount)
	}

	recorded, err := s.ledger.RecordPayment(ctx, ledger.RecordRequest{
		TraderID:    trader.ID,
		MarketID:    trader.MarketID,
		CollectorID: agentID,
		Amount:      amount,
		Period:      trader.LevyPeriod,
	})
	if err != nil {
		// A concurrent retry from the same device may have won the insert.
		var dup *ledger.DuplicatePaymentError
		if errors.As(err, &dup) && dup.Existing != nil && dup.Existing.Status == ledger.StatusPending &&
			resumable(dup.Existing, agentID, amount) {
			return s.resume(ctx, sc, dup.Existing, amount)
		}
		return nil, err
	}
	sc.payment = recorded

	settled, err := s.ledger.ConfirmPayment(ctx, recorded.ID, id.UserID(agentID))
	if err != nil {
		return nil, err
	}
	sc.payment = settled
	return settled, nil
}

func (s *Service) resume(ctx context.Context, sc *scan, open *ledger.LevyPayment, amount decimal.Decimal) (*ledger.LevyPayment, error) {
	sc.payment = open
	if !resumable(open, sc.agentID, amount) {
		return nil, &ledger.PendingConfirmationError{Pending: open}
	}
	settled, err := s.ledger.ConfirmPayment(ctx, open.ID, id.UserID(sc.agentID))
	if err != nil {
		return nil, err
	}
	sc.payment = settled
	sc.resumed = true
	s.metrics.IncrementResumed()
	return settled, nil
}

func resumable(p *ledger.LevyPayment, agentID id.AgentID, amount decimal.Decimal) bool {
	return p.CollectorID == agentID && p.Amount.Equal(amount)
}

// verify also returns the trader and its latest settled payment, which may
// be nil.
func (s *Service) verify(ctx context.Context, sc *scan, code string) (*models.TraderVerificationResult, *directory.Trader, *ledger.LevyPayment, error) {
	payload, err := identity.Decode(code)
	if err != nil {
		return nil, nil, nil, &models.InvalidCodeError{Err: err}
	}
	sc.traderID = payload.TraderID
	sc.marketID = payload.MarketID

	trader, err := s.directory.FindTrader(ctx, payload.TraderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, nil, dErrors.New(dErrors.CodeNotFound, "trader not found")
		}
		return nil, nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trader")
	}
	sc.marketID = trader.MarketID

	window, err := s.ledger.CurrentWindow(trader.LevyPeriod)
	if err != nil {
		return nil, nil, nil, err
	}
	latest, err := s.ledger.LatestSettled(ctx, trader.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	result := &models.TraderVerificationResult{
		TraderID:       trader.ID,
		MarketID:       trader.MarketID,
		BusinessName:   trader.BusinessName,
		OccupancyType:  trader.OccupancyType,
		ExpectedAmount: trader.LevyAmount,
		Period:         trader.LevyPeriod,
		PaymentDue:     latest == nil || !window.Contains(latest.PaymentDate),
		WindowStart:    window.Start,
		WindowEnd:      window.End,
	}
	if latest != nil {
		paid := latest.PaymentDate
		result.LastPaymentDate = &paid
	}
	return result, trader, latest, nil
}

// finish writes the call's audit event and closes its span. An audit
// failure replaces the call's result with an internal error.
func (s *Service) finish(ctx context.Context, span trace.Span, sc *scan, started time.Time, err error) error {
	defer span.End()

	outcome := audit.OutcomeOK
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
	}
	span.SetAttributes(
		attribute.String("levy.agent_id", sc.agentID.String()),
		attribute.String("levy.trader_id", sc.traderID.String()),
		attribute.String("levy.outcome", outcome),
		attribute.Bool("levy.resumed", sc.resumed),
	)

	if !sc.agentID.IsNil() {
		// The call's own deadline must not drop the record of what it did.
		if auditErr := s.emit(context.WithoutCancel(ctx), sc, outcome, err); auditErr != nil {
			s.metrics.IncrementAuditFailure()
			s.logger.ErrorContext(ctx, "audit write failed",
				"operation", sc.op,
				"request_id", requestcontext.RequestID(ctx),
				"agent_id", sc.agentID,
				"trader_id", sc.traderID,
				"outcome", outcome,
				"error", auditErr,
			)
			err = dErrors.Wrap(auditErr, dErrors.CodeInternal, "failed to write audit event")
			outcome = string(dErrors.CodeInternal)
		}
	}

	if outcome == string(dErrors.CodeInternal) {
		span.RecordError(err)
		span.SetStatus(codes.Error, sc.op+" failed")
		s.logger.ErrorContext(ctx, "scan failed",
			"operation", sc.op,
			"request_id", requestcontext.RequestID(ctx),
			"agent_id", sc.agentID,
			"trader_id", sc.traderID,
			"error", err,
		)
	}
	s.metrics.IncrementOutcome(sc.op, outcome)
	s.metrics.ObserveLatency(sc.op, time.Since(started))
	return err
}

func (s *Service) emit(ctx context.Context, sc *scan, outcome string, cause error) error {
	event := audit.Event{
		Action:      string(sc.action),
		Outcome:     outcome,
		AgentID:     sc.agentID,
		TraderID:    sc.traderID,
		MarketID:    sc.marketID,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		DeviceLabel: requestcontext.DeviceLabel(ctx),
	}
	if sc.payment != nil {
		event.PaymentID = sc.payment.ID
	}
	switch {
	case sc.resumed:
		event.Reason = "resumed pending payment"
	case cause != nil && outcome != string(dErrors.CodeInternal):
		event.Reason = cause.Error()
	}
	return s.audit.Emit(ctx, event)
}
