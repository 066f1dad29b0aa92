package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"marketlevy/internal/directory/models"
	ledger "marketlevy/internal/ledger/models"
	sqlitedb "marketlevy/internal/platform/storage/sqlite"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

type DirectorySuite struct {
	suite.Suite
	ctx    context.Context
	dir    *Directory
	seeder *Seeder
	market models.Market
}

func TestDirectorySuite(t *testing.T) {
	suite.Run(t, new(DirectorySuite))
}

func (s *DirectorySuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlitedb.Open(s.ctx, filepath.Join(s.T().TempDir(), "levy.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.dir = New(db)
	s.seeder = NewSeeder(db)
	s.market = models.Market{
		ID:        id.MarketID(uuid.New()),
		Name:      "Oja Oba",
		Active:    true,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.seeder.PutMarket(s.ctx, s.market))
}

func (s *DirectorySuite) trader(createdAt time.Time, active bool) models.Trader {
	t := models.Trader{
		ID:             id.TraderID(uuid.New()),
		MarketID:       s.market.ID,
		BusinessName:   "Mama Ngozi Provisions",
		OccupancyType:  "lock-up shop",
		IdentityNumber: "TRD-" + uuid.NewString()[:8],
		Active:         active,
		LevyAmount:     decimal.RequireFromString("500.50"),
		LevyPeriod:     ledger.PeriodDaily,
		CreatedAt:      createdAt,
	}
	s.Require().NoError(s.seeder.PutTrader(s.ctx, t))
	return t
}

func (s *DirectorySuite) TestFindTrader() {
	want := s.trader(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), true)

	got, err := s.dir.FindTrader(s.ctx, want.ID)
	s.Require().NoError(err)
	s.Equal(want.BusinessName, got.BusinessName)
	s.Equal(want.MarketID, got.MarketID)
	s.True(want.LevyAmount.Equal(got.LevyAmount))
	s.Equal(ledger.PeriodDaily, got.LevyPeriod)
	s.True(got.Active)
	s.True(want.CreatedAt.Equal(got.CreatedAt))

	_, err = s.dir.FindTrader(s.ctx, id.TraderID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DirectorySuite) TestFindMarket() {
	got, err := s.dir.FindMarket(s.ctx, s.market.ID)
	s.Require().NoError(err)
	s.Equal("Oja Oba", got.Name)

	_, err = s.dir.FindMarket(s.ctx, id.MarketID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *DirectorySuite) TestCounts() {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	s.trader(from.Add(time.Hour), true)
	s.trader(from.AddDate(0, 0, 3), false)
	s.trader(from.AddDate(0, 0, -10), true)
	s.trader(to, true) // after the window
	s.Require().NoError(s.seeder.PutCaretaker(s.ctx, models.Caretaker{
		ID: uuid.New(), MarketID: s.market.ID, Name: "Baba Ibeji", Active: true, CreatedAt: from.AddDate(0, 0, 1),
	}))

	c, err := s.dir.Counts(s.ctx, from, to)
	s.Require().NoError(err)
	s.Equal(int64(2), c.TradersRegistered)
	s.Equal(int64(1), c.CaretakersRegistered)
	s.Equal(int64(2), c.ActiveTraders)
	s.Equal(int64(1), c.ActiveMarkets)
}
