package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketlevy/internal/directory/models"
	ledger "marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

// Directory reads traders, markets and caretakers from PostgreSQL.
type Directory struct {
	db *sql.DB
}

func New(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (s *Directory) FindTrader(ctx context.Context, traderID id.TraderID) (*models.Trader, error) {
	var (
		t         models.Trader
		rawID     uuid.UUID
		rawMarket uuid.UUID
		amount    string
		period    string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, market_id, business_name, occupancy_type, identity_number,
		       active, levy_amount, levy_period, created_at
		FROM traders WHERE id = $1`, uuid.UUID(traderID),
	).Scan(&rawID, &rawMarket, &t.BusinessName, &t.OccupancyType, &t.IdentityNumber,
		&t.Active, &amount, &period, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find trader: %w", err)
	}
	t.ID = id.TraderID(rawID)
	t.MarketID = id.MarketID(rawMarket)
	t.LevyPeriod = ledger.Period(period)
	if t.LevyAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse levy amount: %w", err)
	}
	return &t, nil
}

func (s *Directory) FindMarket(ctx context.Context, marketID id.MarketID) (*models.Market, error) {
	var (
		m     models.Market
		rawID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active, created_at FROM markets WHERE id = $1`, uuid.UUID(marketID),
	).Scan(&rawID, &m.Name, &m.Active, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find market: %w", err)
	}
	m.ID = id.MarketID(rawID)
	return &m, nil
}

func (s *Directory) Counts(ctx context.Context, from, to time.Time) (models.Counts, error) {
	var c models.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM traders    WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM caretakers WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM traders    WHERE active AND created_at < $2),
			(SELECT COUNT(*) FROM markets    WHERE active AND created_at < $2)`,
		from, to,
	).Scan(&c.TradersRegistered, &c.CaretakersRegistered, &c.ActiveTraders, &c.ActiveMarkets)
	if err != nil {
		return models.Counts{}, fmt.Errorf("directory counts: %w", err)
	}
	return c, nil
}

// Seeder writes directory rows. The directory is owned by another system;
// this exists for fixtures and local development.
type Seeder struct {
	db *sql.DB
}

func NewSeeder(db *sql.DB) *Seeder {
	return &Seeder{db: db}
}

func (s *Seeder) PutMarket(ctx context.Context, m models.Market) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO markets (id, name, active, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active`,
		uuid.UUID(m.ID), m.Name, m.Active, m.CreatedAt)
	return err
}

func (s *Seeder) PutTrader(ctx context.Context, t models.Trader) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traders (id, market_id, business_name, occupancy_type, identity_number,
		                     active, levy_amount, levy_period, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active,
			levy_amount = EXCLUDED.levy_amount, levy_period = EXCLUDED.levy_period`,
		uuid.UUID(t.ID), uuid.UUID(t.MarketID), t.BusinessName, t.OccupancyType, t.IdentityNumber,
		t.Active, t.LevyAmount.String(), string(t.LevyPeriod), t.CreatedAt)
	return err
}

func (s *Seeder) PutCaretaker(ctx context.Context, c models.Caretaker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO caretakers (id, market_id, name, active, created_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, uuid.UUID(c.MarketID), c.Name, c.Active, c.CreatedAt)
	return err
}
