package models

import (
	"strings"

	"github.com/shopspring/decimal"

	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
)

const (
	maxNotesLength  = 500
	maxReasonLength = 500
)

// RecordRequest is the input to RecordPayment.
type RecordRequest struct {
	TraderID    id.TraderID
	MarketID    id.MarketID
	CollectorID id.AgentID
	Amount      decimal.Decimal
	Period      Period
	Notes       string
}

// Validate checks shape only. Trader and market existence is checked by the
// service against the directory.
func (r RecordRequest) Validate() error {
	if r.TraderID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "trader id is required")
	}
	if r.MarketID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "market id is required")
	}
	if r.CollectorID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "collector id is required")
	}
	if !r.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return dErrors.New(dErrors.CodeValidation, "amount has more than two decimal places")
	}
	if !r.Period.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown levy period "+string(r.Period))
	}
	if len(r.Notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes are too long")
	}
	return nil
}

// ValidateRejectionReason trims and checks a rejection reason.
func ValidateRejectionReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if len(reason) > maxReasonLength {
		return "", dErrors.New(dErrors.CodeValidation, "rejection reason is too long")
	}
	return reason, nil
}
