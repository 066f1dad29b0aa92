package sqlite

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
	sqlitedb "marketlevy/internal/platform/storage/sqlite"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

// Directory reads traders, markets and caretakers from SQLite.
type Directory struct {
	db *sql.DB
}

func New(db *sql.DB) *Directory {
	return &Directory{db: db}
}

func (s *Directory) FindTrader(ctx context.Context, traderID id.TraderID) (*models.Trader, error) {
	var (
		t                models.Trader
		rawID, rawMarket string
		amount, period   string
		active           bool
		createdAt        int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, market_id, business_name, occupancy_type, identity_number,
		       active, levy_amount, levy_period, created_at
		FROM traders WHERE id = ?`, traderID.String(),
	).Scan(&rawID, &rawMarket, &t.BusinessName, &t.OccupancyType, &t.IdentityNumber,
		&active, &amount, &period, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find trader: %w", err)
	}
	tid, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse trader id: %w", err)
	}
	mid, err := uuid.Parse(rawMarket)
	if err != nil {
		return nil, fmt.Errorf("parse market id: %w", err)
	}
	if t.LevyAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse levy amount: %w", err)
	}
	t.ID = id.TraderID(tid)
	t.MarketID = id.MarketID(mid)
	t.Active = active
	t.LevyPeriod = ledger.Period(period)
	t.CreatedAt = sqlitedb.FromMillis(createdAt)
	return &t, nil
}

func (s *Directory) FindMarket(ctx context.Context, marketID id.MarketID) (*models.Market, error) {
	var (
		m         models.Market
		rawID     string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active, created_at FROM markets WHERE id = ?`, marketID.String(),
	).Scan(&rawID, &m.Name, &m.Active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find market: %w", err)
	}
	mid, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse market id: %w", err)
	}
	m.ID = id.MarketID(mid)
	m.CreatedAt = sqlitedb.FromMillis(createdAt)
	return &m, nil
}

func (s *Directory) Counts(ctx context.Context, from, to time.Time) (models.Counts, error) {
	f, t := sqlitedb.ToMillis(from), sqlitedb.ToMillis(to)
	var c models.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM traders    WHERE created_at >= ?1 AND created_at < ?2),
			(SELECT COUNT(*) FROM caretakers WHERE created_at >= ?1 AND created_at < ?2),
			(SELECT COUNT(*) FROM traders    WHERE active = 1 AND created_at < ?2),
			(SELECT COUNT(*) FROM markets    WHERE active = 1 AND created_at < ?2)`,
		f, t,
	).Scan(&c.TradersRegistered, &c.CaretakersRegistered, &c.ActiveTraders, &c.ActiveMarkets)
	if err != nil {
		return models.Counts{}, fmt.Errorf("directory counts: %w", err)
	}
	return c, nil
}

// Seeder writes directory rows for fixtures and local development.
type Seeder struct {
	db *sql.DB
}

func NewSeeder(db *sql.DB) *Seeder {
	return &Seeder{db: db}
}

func (s *Seeder) PutMarket(ctx context.Context, m models.Market) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO markets (id, name, active, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		m.ID.String(), m.Name, m.Active, sqlitedb.ToMillis(m.CreatedAt))
	return err
}

func (s *Seeder) PutTrader(ctx context.Context, t models.Trader) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traders (id, market_id, business_name, occupancy_type, identity_number,
		                     active, levy_amount, levy_period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET active = excluded.active,
			levy_amount = excluded.levy_amount, levy_period = excluded.levy_period`,
		t.ID.String(), t.MarketID.String(), t.BusinessName, t.OccupancyType, t.IdentityNumber,
		t.Active, t.LevyAmount.String(), string(t.LevyPeriod), sqlitedb.ToMillis(t.CreatedAt))
	return err
}

func (s *Seeder) PutCaretaker(ctx context.Context, c models.Caretaker) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO caretakers (id, market_id, name, active, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		c.ID.String(), c.MarketID.String(), c.Name, c.Active, sqlitedb.ToMillis(c.CreatedAt))
	return err
}
