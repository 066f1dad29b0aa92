package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "marketlevy/pkg/domain"
)

// Status is the lifecycle state of a levy payment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSuccessful Status = "successful"
	StatusRejected   Status = "rejected"
	// StatusPaid is a settled status found on imported back-office records.
	// The ledger reads it but never produces it.
	StatusPaid Status = "paid"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccessful, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// IsSettled reports whether the status counts as collected money.
func (s Status) IsSettled() bool {
	return s == StatusSuccessful || s == StatusPaid
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// CanTransitionTo encodes the state machine:
//
//	pending -> successful
//	pending -> rejected
//
// Every other transition, including rejected -> pending, is refused.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusSuccessful || next == StatusRejected)
}

func (s Status) String() string { return string(s) }

// LevyPayment is one billing-window charge attempt against a trader.
//
// Invariants:
//   - Amount is positive
//   - At most one non-rejected payment exists per (TraderID, BillingWindowStart)
//   - TransactionReference is globally unique and never changes
//   - Once settled or rejected the record is immutable
type LevyPayment struct {
	ID                   id.PaymentID    `json:"id"`
	TraderID             id.TraderID     `json:"trader_id"`
	MarketID             id.MarketID     `json:"market_id"`
	CollectorID          id.AgentID      `json:"collector_id"`
	Amount               decimal.Decimal `json:"amount"`
	Period               Period          `json:"period"`
	PaymentDate          time.Time       `json:"payment_date"`
	BillingWindowStart   time.Time       `json:"billing_window_start"`
	BillingWindowEnd     time.Time       `json:"billing_window_end"`
	Status               Status          `json:"status"`
	TransactionReference string          `json:"transaction_reference"`
	Notes                string          `json:"notes,omitempty"`
	RejectionReason      string          `json:"rejection_reason,omitempty"`
	ConfirmedBy          *id.UserID      `json:"confirmed_by,omitempty"`
	RejectedBy           *id.UserID      `json:"rejected_by,omitempty"`
	SettledAt            *time.Time      `json:"settled_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// InWindow reports whether the payment belongs to w.
func (p *LevyPayment) InWindow(w Window) bool {
	return p.BillingWindowStart.Equal(w.Start)
}

// ApplyConfirmation settles a pending payment. Callers check CanTransitionTo
// first; SQL stores apply the same change with a conditional UPDATE.
func (p *LevyPayment) ApplyConfirmation(actor id.UserID, now time.Time) {
	p.Status = StatusSuccessful
	p.ConfirmedBy = &actor
	p.SettledAt = &now
	p.UpdatedAt = now
}

// ApplyRejection rejects a pending payment with a reason.
func (p *LevyPayment) ApplyRejection(actor id.UserID, reason string, now time.Time) {
	p.Status = StatusRejected
	p.RejectedBy = &actor
	p.RejectionReason = reason
	p.UpdatedAt = now
}
