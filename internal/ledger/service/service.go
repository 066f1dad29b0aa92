// Package service is the levy ledger: the source of truth for payment
// attempts and their outcome.
//
// Double charging is prevented by the store's unique index on
// (trader_id, billing_window_start) for non-rejected rows. The pre-insert
// lookup exists only to return the existing payment with the error; it is
// not what keeps concurrent requests apart.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketlevy/internal/ledger/metrics"
	"marketlevy/internal/ledger/models"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/requestcontext"
)

const tracerName = "marketlevy/internal/ledger"

// Transactor runs fn in one unit of work. SQL deployments pass
// tx.NewTransactor so status changes and their audit rows commit together.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service records, settles and reads levy payments.
type Service struct {
	store          Store
	directory      Directory
	tx             Transactor
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	now            func() time.Time
	loc            *time.Location
	random         io.Reader
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher makes every state change emit an audit event inside the
// same unit of work. Leave it unset for callers that audit on their own.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTransactor(t Transactor) Option {
	return func(s *Service) {
		s.tx = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone billing windows are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRandom replaces the entropy source for transaction references.
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		s.random = r
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func New(store Store, directory Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		directory: directory,
		tx:        directTx{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the ledger clock in the billing location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Location is the zone billing windows are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// CurrentWindow is the billing window for period containing the ledger clock.
func (s *Service) CurrentWindow(period models.Period) (models.Window, error) {
	return models.GetBillingWindow(period, s.Now())
}

// observe closes the span and records the outcome of one operation.
// fields are added to the log line of an unexpected failure.
func (s *Service) observe(ctx context.Context, span trace.Span, op string, started time.Time, err error, fields ...any) {
	defer span.End()
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.SetAttributes(attribute.String("levy.outcome", outcome))
		if outcome == string(dErrors.CodeInternal) {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
			args := append([]any{
				"operation", op,
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			}, fields...)
			s.logger.ErrorContext(ctx, "ledger operation failed", args...)
		}
	}
	s.metrics.IncrementOutcome(op, outcome)
	s.metrics.ObserveLatency(op, time.Since(started))
}

func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
}
