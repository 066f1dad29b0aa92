// Package store holds the facts every ledger store reports in the same way.
package store

import (
	"fmt"

	"marketlevy/pkg/platform/sentinel"
)

// Unique indexes on levy_payments. Both SQL engines use the same names.
const (
	IndexTraderWindow = "levy_payments_trader_window_key"
	IndexReference    = "levy_payments_transaction_reference_key"
)

// Both wrap sentinel.ErrConflict so callers that only care about "a unique
// index said no" can still use errors.Is(err, sentinel.ErrConflict).
var (
	ErrWindowTaken    = fmt.Errorf("%w: trader already has a payment in this billing window", sentinel.ErrConflict)
	ErrReferenceTaken = fmt.Errorf("%w: transaction reference already exists", sentinel.ErrConflict)
)
