package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"marketlevy/internal/dashboard/cache"
	"marketlevy/internal/dashboard/models"
	"marketlevy/internal/dashboard/service/mocks"
	directory "marketlevy/internal/directory/models"
	ledger "marketlevy/internal/ledger/models"
	dErrors "marketlevy/pkg/domain-errors"
)

// window is the source data for one day range, keyed by its start date.
type window struct {
	sum    string
	count  int64
	paying int64
	dir    directory.Counts
}

// fakeSources answers by window start and counts SumSettled calls, one per
// window per build.
type fakeSources struct {
	windows map[string]window
	sums    atomic.Int64
	gate    chan struct{}
}

func (f *fakeSources) lookup(t time.Time) window {
	return f.windows[t.Format(time.DateOnly)]
}

func (f *fakeSources) SumSettled(ctx context.Context, r ledger.DateRange) (decimal.Decimal, error) {
	f.sums.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	w := f.lookup(r.Start)
	if w.sum == "" {
		return decimal.Zero, nil
	}
	return decimal.RequireFromString(w.sum), nil
}

func (f *fakeSources) CountPayments(_ context.Context, r ledger.DateRange) (int64, error) {
	return f.lookup(r.Start).count, nil
}

func (f *fakeSources) CountPayingTraders(_ context.Context, r ledger.DateRange) (int64, error) {
	return f.lookup(r.Start).paying, nil
}

func (f *fakeSources) Counts(_ context.Context, from, _ time.Time) (directory.Counts, error) {
	return f.lookup(from).dir, nil
}

type DashboardServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	sources *fakeSources
}

func TestDashboardServiceSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceSuite))
}

func (s *DashboardServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 18, 14, 0, 0, 0, time.UTC)
	s.sources = &fakeSources{windows: map[string]window{
		"2026-03-18": {sum: "1500.00", count: 3, paying: 3, dir: directory.Counts{
			TradersRegistered: 4, CaretakersRegistered: 1, ActiveTraders: 4, ActiveMarkets: 2,
		}},
		"2026-03-17": {sum: "1000.00", count: 2, paying: 2, dir: directory.Counts{
			TradersRegistered: 2, CaretakersRegistered: 0, ActiveTraders: 5, ActiveMarkets: 2,
		}},
	}}
}

func (s *DashboardServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return s.now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(s.sources, s.sources, append(base, opts...)...)
}

func (s *DashboardServiceSuite) TestBuildDashboard() {
	d, err := s.newService().BuildDashboard(s.ctx, models.WindowToday)
	s.Require().NoError(err)

	s.Equal(models.Range{From: "2026-03-18", To: "2026-03-18"}, d.Current)
	s.Equal(models.Range{From: "2026-03-17", To: "2026-03-17"}, d.Previous)

	s.Equal(100.0, d.Traders.PercentageChange)
	s.Equal(models.DirectionUp, d.Traders.Direction)
	s.Equal(100.0, d.Caretakers.PercentageChange, "zero previous")
	s.Equal(50.0, d.LevyTotal.PercentageChange)
	s.True(d.LevyTotal.Current.Equal(decimal.RequireFromString("1500")))
	s.Equal(50.0, d.TransactionCount.PercentageChange)

	s.True(d.ComplianceRate.Current.Equal(decimal.RequireFromString("75")))
	s.True(d.ComplianceRate.Previous.Equal(decimal.RequireFromString("40")))
	s.Equal(87.5, d.ComplianceRate.PercentageChange)
	s.Equal(models.DirectionUp, d.ComplianceRate.Direction)

	s.Equal(0.0, d.ActiveMarkets.PercentageChange)
	s.Equal(models.DirectionUp, d.ActiveMarkets.Direction)
	s.Equal(s.now, d.GeneratedAt)
}

func (s *DashboardServiceSuite) TestBuildDashboardEmptyWindows() {
	s.sources.windows = map[string]window{}
	d, err := s.newService().BuildDashboard(s.ctx, models.WindowLast7Days)
	s.Require().NoError(err)

	s.Equal(models.Range{From: "2026-03-12", To: "2026-03-18"}, d.Current)
	s.Equal(models.Range{From: "2026-03-05", To: "2026-03-11"}, d.Previous)
	s.Equal(models.DirectionFlat, d.LevyTotal.Direction)
	s.Equal(0.0, d.ComplianceRate.PercentageChange)
}

func (s *DashboardServiceSuite) TestBuildDashboardSourceFailure() {
	ctrl := gomock.NewController(s.T())
	ledgerMock := mocks.NewMockLedger(ctrl)
	dirMock := mocks.NewMockDirectory(ctrl)

	ledgerMock.EXPECT().SumSettled(gomock.Any(), gomock.Any()).Return(decimal.Zero, nil).AnyTimes()
	ledgerMock.EXPECT().CountPayments(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()
	ledgerMock.EXPECT().CountPayingTraders(gomock.Any(), gomock.Any()).Return(int64(0), nil).AnyTimes()
	dirMock.EXPECT().Counts(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(directory.Counts{}, errors.New("directory unavailable")).MinTimes(1)

	svc := New(ledgerMock, dirMock, WithClock(func() time.Time { return s.now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	d, err := svc.BuildDashboard(s.ctx, models.WindowToday)

	s.Nil(d, "no partially zeroed dashboard")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *DashboardServiceSuite) TestUnknownWindow() {
	_, err := s.newService().BuildDashboard(s.ctx, "fortnight")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Zero(s.sources.sums.Load())
}

func (s *DashboardServiceSuite) TestDashboardCaches() {
	svc := s.newService(WithCache(cache.NewInMemory(), time.Minute))

	first, err := svc.Dashboard(s.ctx, models.WindowToday)
	s.Require().NoError(err)
	second, err := svc.Dashboard(s.ctx, models.WindowToday)
	s.Require().NoError(err)

	s.Equal(first.LevyTotal, second.LevyTotal)
	s.EqualValues(2, s.sources.sums.Load(), "one build covers both windows")
}

func (s *DashboardServiceSuite) TestDashboardKeyFollowsTheDay() {
	svc := s.newService(WithCache(cache.NewInMemory(), time.Hour))

	_, err := svc.Dashboard(s.ctx, models.WindowToday)
	s.Require().NoError(err)
	s.now = s.now.Add(12 * time.Hour)
	d, err := svc.Dashboard(s.ctx, models.WindowToday)
	s.Require().NoError(err)

	s.Equal("2026-03-19", d.Current.From)
	s.EqualValues(4, s.sources.sums.Load())
}

func (s *DashboardServiceSuite) TestDashboardCacheReadFailure() {
	ctrl := gomock.NewController(s.T())
	c := mocks.NewMockCache(ctrl)
	c.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis: connection refused")).Times(2)
	c.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), time.Minute).Return(errors.New("redis: connection refused"))

	d, err := s.newService(WithCache(c, time.Minute)).Dashboard(s.ctx, models.WindowToday)

	s.Require().NoError(err, "cache failures degrade to a fresh build")
	s.Equal(50.0, d.LevyTotal.PercentageChange)
}

func (s *DashboardServiceSuite) TestConcurrentMissesShareOneBuild() {
	s.sources.gate = make(chan struct{})
	svc := s.newService(WithCache(cache.NewInMemory(), time.Minute))

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Dashboard(s.ctx, models.WindowThisMonth)
			errs <- err
		}()
	}
	s.Eventually(func() bool { return s.sources.sums.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(s.sources.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
	s.EqualValues(2, s.sources.sums.Load())
}

func (s *DashboardServiceSuite) TestRefreshPopulatesEveryWindow() {
	svc := s.newService(WithCache(cache.NewInMemory(), time.Minute))

	s.Require().NoError(svc.Refresh(s.ctx))
	built := s.sources.sums.Load()
	s.EqualValues(2*len(models.Labels), built)

	for _, label := range models.Labels {
		_, err := svc.Dashboard(s.ctx, label)
		s.Require().NoError(err)
	}
	s.Equal(built, s.sources.sums.Load(), "all served from cache")
}

func (s *DashboardServiceSuite) TestRefresherStopsOnCancel() {
	svc := s.newService(WithCache(cache.NewInMemory(), time.Minute))
	r := NewRefresher(svc, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	s.Eventually(func() bool { return s.sources.sums.Load() == int64(2*len(models.Labels)) },
		time.Second, 5*time.Millisecond, "initial refresh")
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("refresher did not stop")
	}
}
