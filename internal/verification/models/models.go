// Package models holds the field-agent view of a scanned trader.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	ledger "marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
)

// TraderVerificationResult is what an agent's device shows after a scan.
type TraderVerificationResult struct {
	TraderID        id.TraderID     `json:"trader_id"`
	MarketID        id.MarketID     `json:"market_id"`
	BusinessName    string          `json:"business_name"`
	OccupancyType   string          `json:"occupancy_type,omitempty"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount"`
	Period          ledger.Period   `json:"period"`
	LastPaymentDate *time.Time      `json:"last_payment_date"`
	// PaymentDue is true when no settled payment exists in the current window.
	PaymentDue  bool      `json:"payment_due"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// InvalidCodeError wraps a codec failure for a scanned code.
type InvalidCodeError struct {
	Err error
}

func (e *InvalidCodeError) Error() string {
	return "invalid trader code: " + e.Err.Error()
}

func (e *InvalidCodeError) Unwrap() error { return e.Err }

func (e *InvalidCodeError) ErrorCode() dErrors.Code { return dErrors.CodeInvalidCode }

// AlreadyPaidError reports that the trader has settled the current window.
// It is a business outcome: the agent's device shows "already collected".
type AlreadyPaidError struct {
	TraderID    id.TraderID
	Window      ledger.Window
	LastPayment *ledger.LevyPayment
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("trader %s has already paid for window starting %s",
		e.TraderID, e.Window.Start.Format(time.DateOnly))
}

func (e *AlreadyPaidError) ErrorCode() dErrors.Code { return dErrors.CodeAlreadyPaid }
