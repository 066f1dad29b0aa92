package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/audit"
	"marketlevy/pkg/platform/sentinel"
	"marketlevy/pkg/requestcontext"
)

// ConfirmPayment settles a pending payment. Confirming a payment that is
// already settled or rejected returns *models.InvalidStateTransitionError.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID id.PaymentID, actorID id.UserID) (_ *models.LevyPayment, err error) {
	started := time.Now()
	ctx, span := s.startSpan(ctx, "confirm_payment", attribute.String("levy.payment_id", paymentID.String()))
	defer func() { s.observe(ctx, span, "confirm_payment", started, err, "payment_id", paymentID) }()

	p, err := s.transition(ctx, paymentID, actorID, models.StatusSuccessful, func(p *models.LevyPayment, now time.Time) {
		p.ApplyConfirmation(actorID, now)
	})
	if err != nil {
		return nil, err
	}
	amount, _ := p.Amount.Float64()
	s.metrics.AddSettled(string(p.Period), amount)
	return p, nil
}

// RejectPayment closes a pending payment with a mandatory reason. The window
// becomes free again; a new attempt is a new payment.
func (s *Service) RejectPayment(ctx context.Context, paymentID id.PaymentID, actorID id.UserID, reason string) (_ *models.LevyPayment, err error) {
	started := time.Now()
	ctx, span := s.startSpan(ctx, "reject_payment", attribute.String("levy.payment_id", paymentID.String()))
	defer func() { s.observe(ctx, span, "reject_payment", started, err, "payment_id", paymentID) }()

	reason, err = models.ValidateRejectionReason(reason)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, paymentID, actorID, models.StatusRejected, func(p *models.LevyPayment, now time.Time) {
		p.ApplyRejection(actorID, reason, now)
	})
}

func (s *Service) transition(
	ctx context.Context,
	paymentID id.PaymentID,
	actorID id.UserID,
	to models.Status,
	apply func(*models.LevyPayment, time.Time),
) (*models.LevyPayment, error) {
	if paymentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "payment id is required")
	}
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "actor id is required")
	}

	var result *models.LevyPayment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.loadPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if !p.Status.CanTransitionTo(to) {
			return &models.InvalidStateTransitionError{PaymentID: paymentID, From: p.Status, To: to}
		}
		apply(p, s.Now())

		if err := s.store.UpdateStatus(ctx, p); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInvalidState):
				// Another request moved it first.
				current, loadErr := s.loadPayment(ctx, paymentID)
				if loadErr != nil {
					return loadErr
				}
				return &models.InvalidStateTransitionError{PaymentID: paymentID, From: current.Status, To: to}
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "payment not found")
			default:
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment")
			}
		}

		action := audit.EventLevyConfirmed
		if to == models.StatusRejected {
			action = audit.EventLevyRejected
		}
		if err := s.emit(ctx, action, p, p.RejectionReason); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit payment change")
		}
		result = p
		return nil
	})
	if err != nil {
		if !isCoded(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment")
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) loadPayment(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error) {
	p, err := s.store.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "payment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load payment")
	}
	return p, nil
}

// emit writes the audit event for a state change when a publisher is set.
func (s *Service) emit(ctx context.Context, action audit.AuditEvent, p *models.LevyPayment, reason string) error {
	if s.auditPublisher == nil {
		return nil
	}
	event := audit.Event{
		Action:      string(action),
		Outcome:     audit.OutcomeOK,
		Reason:      reason,
		AgentID:     p.CollectorID,
		TraderID:    p.TraderID,
		MarketID:    p.MarketID,
		PaymentID:   p.ID,
		RequestID:   requestcontext.RequestID(ctx),
		ClientIP:    requestcontext.ClientIP(ctx),
		DeviceLabel: requestcontext.DeviceLabel(ctx),
	}
	switch {
	case p.RejectedBy != nil:
		event.ActorID = *p.RejectedBy
	case p.ConfirmedBy != nil:
		event.ActorID = *p.ConfirmedBy
	default:
		event.ActorID = requestcontext.ActorID(ctx)
	}
	return s.auditPublisher.Emit(ctx, event)
}

func isCoded(err error) bool {
	var coded dErrors.Coded
	return errors.As(err, &coded)
}
