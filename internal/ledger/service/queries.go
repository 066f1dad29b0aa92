package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/sentinel"
)

// GetPayment returns one payment by id.
func (s *Service) GetPayment(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error) {
	if paymentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "payment id is required")
	}
	return s.loadPayment(ctx, paymentID)
}

// GetPaymentsForTrader lists the trader's payments dated inside the range,
// newest first. Rejected attempts are included.
func (s *Service) GetPaymentsForTrader(ctx context.Context, traderID id.TraderID, r models.DateRange) (_ []*models.LevyPayment, err error) {
	started := time.Now()
	ctx, span := s.startSpan(ctx, "list_payments", attribute.String("levy.trader_id", traderID.String()))
	defer func() { s.observe(ctx, span, "list_payments", started, err, "trader_id", traderID) }()

	if traderID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "trader id is required")
	}
	from, to := r.Bounds()
	payments, err := s.store.ListByTrader(ctx, traderID, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return payments, nil
}

// LatestSettled returns the trader's most recent settled payment, or nil
// when the trader has never paid.
func (s *Service) LatestSettled(ctx context.Context, traderID id.TraderID) (*models.LevyPayment, error) {
	p, err := s.store.LatestSettled(ctx, traderID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest settled payment")
	}
	return p, nil
}

// OpenPayment returns the pending payment in w, or nil. A payment left
// pending by an interrupted collection is found here on retry.
func (s *Service) OpenPayment(ctx context.Context, traderID id.TraderID, w models.Window) (*models.LevyPayment, error) {
	payments, err := s.store.FindActiveInWindow(ctx, traderID, w)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load open payment")
	}
	for _, p := range payments {
		if p.Status == models.StatusPending {
			return p, nil
		}
	}
	return nil, nil
}

// SumSettled is the collected levy total in the range.
func (s *Service) SumSettled(ctx context.Context, r models.DateRange) (decimal.Decimal, error) {
	from, to := r.Bounds()
	total, err := s.store.SumSettled(ctx, from, to)
	if err != nil {
		return decimal.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sum settled payments")
	}
	return total, nil
}

// CountPayments counts settled payments in the range.
func (s *Service) CountPayments(ctx context.Context, r models.DateRange) (int64, error) {
	from, to := r.Bounds()
	n, err := s.store.CountSettled(ctx, from, to)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count payments")
	}
	return n, nil
}

// CountPayingTraders counts distinct traders with a settled payment in the
// range.
func (s *Service) CountPayingTraders(ctx context.Context, r models.DateRange) (int64, error) {
	from, to := r.Bounds()
	n, err := s.store.CountPayingTraders(ctx, from, to)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count paying traders")
	}
	return n, nil
}
