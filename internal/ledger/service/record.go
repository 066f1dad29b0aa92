package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"marketlevy/internal/ledger/models"
	"marketlevy/internal/ledger/store"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/audit"
	"marketlevy/pkg/platform/sentinel"
)

// maxReferenceAttempts bounds retries after a transaction reference
// collision. Forty random bits make even one retry unusual.
const maxReferenceAttempts = 3

// RecordPayment creates a pending payment for the trader's current billing
// window. A settled or pending payment already in the window yields
// *models.DuplicatePaymentError with Existing set. This holds for concurrent
// callers too: the store's unique index decides, and its violation is
// translated into the same error.
func (s *Service) RecordPayment(ctx context.Context, req models.RecordRequest) (_ *models.LevyPayment, err error) {
	started := time.Now()
	ctx, span := s.startSpan(ctx, "record_payment",
		attribute.String("levy.trader_id", req.TraderID.String()),
		attribute.String("levy.period", string(req.Period)),
	)
	defer func() { s.observe(ctx, span, "record_payment", started, err, "trader_id", req.TraderID) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDirectory(ctx, req); err != nil {
		return nil, err
	}

	now := s.Now()
	window, err := models.GetBillingWindow(req.Period, now)
	if err != nil {
		return nil, err
	}

	if existing, err := s.activeInWindow(ctx, req.TraderID, window); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &models.DuplicatePaymentError{TraderID: req.TraderID, Window: window, Existing: existing}
	}

	payment := &models.LevyPayment{
		ID:                 id.NewPaymentID(),
		TraderID:           req.TraderID,
		MarketID:           req.MarketID,
		CollectorID:        req.CollectorID,
		Amount:             req.Amount,
		Period:             req.Period,
		PaymentDate:        now,
		BillingWindowStart: window.Start,
		BillingWindowEnd:   window.End,
		Status:             models.StatusPending,
		Notes:              req.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	for attempt := 1; ; attempt++ {
		ref, err := models.NewTransactionReference(now, s.random)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate transaction reference")
		}
		payment.TransactionReference = ref

		err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.store.Create(ctx, payment); err != nil {
				return err
			}
			return s.emit(ctx, audit.EventLevyRecorded, payment, "")
		})
		switch {
		case err == nil:
			span.SetAttributes(attribute.String("levy.payment_id", payment.ID.String()))
			return payment, nil
		case errors.Is(err, store.ErrReferenceTaken):
			s.metrics.IncrementConflict(store.IndexReference)
			if attempt >= maxReferenceAttempts {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not allocate a unique transaction reference")
			}
			s.logger.WarnContext(ctx, "transaction reference collision, retrying",
				"transaction_reference", ref, "attempt", attempt)
		case errors.Is(err, store.ErrWindowTaken):
			s.metrics.IncrementConflict(store.IndexTraderWindow)
			// Lost the race to a concurrent request. Report its payment.
			dup := &models.DuplicatePaymentError{TraderID: req.TraderID, Window: window}
			if existing, lookupErr := s.activeInWindow(ctx, req.TraderID, window); lookupErr == nil {
				dup.Existing = existing
			}
			return nil, dup
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
		}
	}
}

// checkDirectory also pins the period to the trader's own cadence: the window
// index keys on the window start, so a shorter period would open a second
// window inside the trader's billing window.
func (s *Service) checkDirectory(ctx context.Context, req models.RecordRequest) error {
	trader, err := s.directory.FindTrader(ctx, req.TraderID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "trader not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trader")
	}
	if trader.MarketID != req.MarketID {
		return dErrors.New(dErrors.CodeValidation, "trader does not belong to market")
	}
	if _, err := s.directory.FindMarket(ctx, req.MarketID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "market not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load market")
	}
	if !trader.Active {
		return dErrors.New(dErrors.CodeValidation, "trader is not active")
	}
	if req.Period != trader.LevyPeriod {
		return dErrors.New(dErrors.CodeValidation,
			"levy period "+string(req.Period)+" does not match trader period "+string(trader.LevyPeriod))
	}
	return nil
}

// activeInWindow returns the payment blocking a new one in w, preferring a
// settled payment over a pending one. It returns nil when the window is free.
func (s *Service) activeInWindow(ctx context.Context, traderID id.TraderID, w models.Window) (*models.LevyPayment, error) {
	payments, err := s.store.FindActiveInWindow(ctx, traderID, w)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing payments")
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return payments[0], nil
}
