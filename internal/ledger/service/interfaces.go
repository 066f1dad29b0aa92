package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	directory "marketlevy/internal/directory/models"
	"marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/audit"
)

// Store persists levy payments. Implementations enforce the unique indexes
// in store.IndexTraderWindow and store.IndexReference and report violations
// as store.ErrWindowTaken and store.ErrReferenceTaken.
type Store interface {
	Create(ctx context.Context, p *models.LevyPayment) error
	FindByID(ctx context.Context, paymentID id.PaymentID) (*models.LevyPayment, error)
	// FindActiveInWindow returns non-rejected payments whose payment date is
	// inside w, settled payments first.
	FindActiveInWindow(ctx context.Context, traderID id.TraderID, w models.Window) ([]*models.LevyPayment, error)
	ListByTrader(ctx context.Context, traderID id.TraderID, from, to time.Time) ([]*models.LevyPayment, error)
	LatestSettled(ctx context.Context, traderID id.TraderID) (*models.LevyPayment, error)
	// UpdateStatus writes p's status fields only if the stored row is still
	// pending. It returns sentinel.ErrInvalidState otherwise.
	UpdateStatus(ctx context.Context, p *models.LevyPayment) error

	SumSettled(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	CountSettled(ctx context.Context, from, to time.Time) (int64, error)
	CountPayingTraders(ctx context.Context, from, to time.Time) (int64, error)
}

// Directory is the read-only trader and market directory.
type Directory interface {
	FindTrader(ctx context.Context, traderID id.TraderID) (*directory.Trader, error)
	FindMarket(ctx context.Context, marketID id.MarketID) (*directory.Market, error)
}

// AuditPublisher records administrative actions on payments.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
