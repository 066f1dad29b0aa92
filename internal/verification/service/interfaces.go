package service

import (
	"context"

	directory "marketlevy/internal/directory/models"
	ledger "marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/audit"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Ledger is the gateway's view of the levy ledger.
type Ledger interface {
	RecordPayment(ctx context.Context, req ledger.RecordRequest) (*ledger.LevyPayment, error)
	ConfirmPayment(ctx context.Context, paymentID id.PaymentID, actorID id.UserID) (*ledger.LevyPayment, error)
	LatestSettled(ctx context.Context, traderID id.TraderID) (*ledger.LevyPayment, error)
	OpenPayment(ctx context.Context, traderID id.TraderID, w ledger.Window) (*ledger.LevyPayment, error)
	CurrentWindow(period ledger.Period) (ledger.Window, error)
}

// Directory looks up the scanned trader.
type Directory interface {
	FindTrader(ctx context.Context, traderID id.TraderID) (*directory.Trader, error)
}

// AuditPublisher must persist the event or return an error.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
