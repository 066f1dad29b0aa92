package models

import (
	"fmt"

	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
)

// DuplicatePaymentError reports that the trader already has a settled or
// pending payment in the billing window. Existing is that payment when the
// ledger could load it.
type DuplicatePaymentError struct {
	TraderID id.TraderID
	Window   Window
	Existing *LevyPayment
}

func (e *DuplicatePaymentError) Error() string {
	if e.Existing != nil && e.Existing.Status == StatusPending {
		return fmt.Sprintf("trader %s already has a pending payment %s for window starting %s",
			e.TraderID, e.Existing.TransactionReference, e.Window.Start.Format("2006-01-02"))
	}
	return fmt.Sprintf("trader %s has already paid for window starting %s",
		e.TraderID, e.Window.Start.Format("2006-01-02"))
}

func (e *DuplicatePaymentError) ErrorCode() dErrors.Code { return dErrors.CodeDuplicatePayment }

// InvalidStateTransitionError reports a confirm or reject on a payment that
// is no longer pending.
type InvalidStateTransitionError struct {
	PaymentID id.PaymentID
	From      Status
	To        Status
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("payment %s cannot move from %s to %s", e.PaymentID, e.From, e.To)
}

func (e *InvalidStateTransitionError) ErrorCode() dErrors.Code {
	return dErrors.CodeInvalidStateTransition
}

// PendingConfirmationError reports a pending payment in the current window
// that the caller may not resume (different collector or amount). It must be
// confirmed or rejected through reconciliation first.
type PendingConfirmationError struct {
	Pending *LevyPayment
}

func (e *PendingConfirmationError) Error() string {
	return fmt.Sprintf("payment %s is awaiting confirmation", e.Pending.TransactionReference)
}

func (e *PendingConfirmationError) ErrorCode() dErrors.Code {
	return dErrors.CodePendingConfirmation
}
