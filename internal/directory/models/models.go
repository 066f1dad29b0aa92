// Package models holds the read-only view of the market directory: traders,
// markets and caretakers. The directory is owned elsewhere; the levy core
// only reads it.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledger "marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
)

// Trader is a stall holder registered in a market.
type Trader struct {
	ID             id.TraderID
	MarketID       id.MarketID
	BusinessName   string
	OccupancyType  string
	IdentityNumber string
	Active         bool
	LevyAmount     decimal.Decimal
	LevyPeriod     ledger.Period
	CreatedAt      time.Time
}

// Market is a physical market under a chairman.
type Market struct {
	ID        id.MarketID
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Caretaker is market staff. Only counted for dashboards.
type Caretaker struct {
	ID        uuid.UUID
	MarketID  id.MarketID
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Counts are the directory-side aggregates for one dashboard window
// [from, to). "Registered" counts entities created inside the window;
// "Active" counts active entities that existed before the window closed.
type Counts struct {
	TradersRegistered    int64
	CaretakersRegistered int64
	ActiveTraders        int64
	ActiveMarkets        int64
}
