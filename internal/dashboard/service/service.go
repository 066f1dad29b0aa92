// Package service builds chairman dashboards from ledger and directory
// aggregates.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"marketlevy/internal/dashboard/metrics"
	"marketlevy/internal/dashboard/models"
	directory "marketlevy/internal/directory/models"
	ledger "marketlevy/internal/ledger/models"
	dErrors "marketlevy/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Ledger supplies the payment-side aggregates.
type Ledger interface {
	SumSettled(ctx context.Context, r ledger.DateRange) (decimal.Decimal, error)
	CountPayments(ctx context.Context, r ledger.DateRange) (int64, error)
	CountPayingTraders(ctx context.Context, r ledger.DateRange) (int64, error)
}

// Directory supplies registration and activity counts for [from, to).
type Directory interface {
	Counts(ctx context.Context, from, to time.Time) (directory.Counts, error)
}

// Cache stores computed dashboards. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Dashboard, error)
	Set(ctx context.Context, key string, d *models.Dashboard, ttl time.Duration) error
}

const buildTimeout = 10 * time.Second

type Service struct {
	ledger    Ledger
	directory Directory
	cache     Cache
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	loc       *time.Location
	group     singleflight.Group
}

type Option func(*Service)

// WithCache enables caching with the given time to live.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(ledger Ledger, directory Directory, opts ...Option) *Service {
	s := &Service{
		ledger:    ledger,
		directory: directory,
		ttl:       time.Minute,
		logger:    slog.Default(),
		now:       time.Now,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// windowCounts holds every source value for one window.
type windowCounts struct {
	levyTotal    decimal.Decimal
	transactions int64
	payingTrader int64
	directory    directory.Counts
}

// BuildDashboard computes the dashboard for label from the sources. Any
// failing source fails the whole dashboard.
func (s *Service) BuildDashboard(ctx context.Context, label models.WindowLabel) (*models.Dashboard, error) {
	started := time.Now()
	now := s.now().In(s.loc)
	current, err := models.ResolveWindow(label, now)
	if err != nil {
		return nil, err
	}
	previous := models.GetPreviousWindow(current)

	var cur, prev windowCounts
	g, gctx := errgroup.WithContext(ctx)
	s.fetch(gctx, g, current, &cur)
	s.fetch(gctx, g, previous, &prev)
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard aggregation failed",
			"window", label,
			"from", current.Start.Format(time.DateOnly),
			"error", err,
		)
		if isCoded(err) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}
	s.metrics.ObserveBuild(string(label), time.Since(started))

	compliance := models.ComputeChange(
		models.ComplianceRate(cur.payingTrader, cur.directory.ActiveTraders),
		models.ComplianceRate(prev.payingTrader, prev.directory.ActiveTraders),
	)
	return &models.Dashboard{
		Window:           label,
		Current:          models.RangeOf(current),
		Previous:         models.RangeOf(previous),
		Traders:          models.ComputeChange(decimal.NewFromInt(cur.directory.TradersRegistered), decimal.NewFromInt(prev.directory.TradersRegistered)),
		Caretakers:       models.ComputeChange(decimal.NewFromInt(cur.directory.CaretakersRegistered), decimal.NewFromInt(prev.directory.CaretakersRegistered)),
		LevyTotal:        models.ComputeChange(cur.levyTotal, prev.levyTotal),
		ComplianceRate:   compliance,
		TransactionCount: models.ComputeChange(decimal.NewFromInt(cur.transactions), decimal.NewFromInt(prev.transactions)),
		ActiveMarkets:    models.ComputeChange(decimal.NewFromInt(cur.directory.ActiveMarkets), decimal.NewFromInt(prev.directory.ActiveMarkets)),
		GeneratedAt:      now,
	}, nil
}

func (s *Service) fetch(ctx context.Context, g *errgroup.Group, r ledger.DateRange, out *windowCounts) {
	g.Go(func() error {
		total, err := s.ledger.SumSettled(ctx, r)
		out.levyTotal = total
		return err
	})
	g.Go(func() error {
		n, err := s.ledger.CountPayments(ctx, r)
		out.transactions = n
		return err
	})
	g.Go(func() error {
		n, err := s.ledger.CountPayingTraders(ctx, r)
		out.payingTrader = n
		return err
	})
	g.Go(func() error {
		from, to := r.Bounds()
		counts, err := s.directory.Counts(ctx, from, to)
		out.directory = counts
		return err
	})
}

// Dashboard serves label from the cache when possible. Concurrent misses
// for the same window share one build. Cache failures degrade to a fresh
// build.
func (s *Service) Dashboard(ctx context.Context, label models.WindowLabel) (*models.Dashboard, error) {
	if s.cache == nil {
		return s.BuildDashboard(ctx, label)
	}
	key, err := s.cacheKey(label)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "dashboard cache read failed", "key", key, "error", err)
	case cached != nil:
		s.metrics.IncrementCacheLookup("hit")
		return cached, nil
	default:
		s.metrics.IncrementCacheLookup("miss")
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		if cached, err := s.cache.Get(bctx, key); err == nil && cached != nil {
			return cached, nil
		}
		d, err := s.BuildDashboard(bctx, label)
		if err != nil {
			return nil, err
		}
		s.store(bctx, key, d)
		return d, nil
	})
	if err != nil {
		s.metrics.IncrementBuildFailure(string(label), "request")
		return nil, err
	}
	return v.(*models.Dashboard), nil
}

// Refresh rebuilds and caches every window. It keeps going after a failed
// window and returns the joined errors.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	var errs []error
	for _, label := range models.Labels {
		key, err := s.cacheKey(label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d, err := s.BuildDashboard(ctx, label)
		if err != nil {
			s.metrics.IncrementBuildFailure(string(label), "refresh")
			errs = append(errs, err)
			continue
		}
		s.store(ctx, key, d)
	}
	return errors.Join(errs...)
}

func (s *Service) store(ctx context.Context, key string, d *models.Dashboard) {
	if err := s.cache.Set(ctx, key, d, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache write failed", "key", key, "error", err)
	}
}

// cacheKey includes the window start so a label never serves yesterday's
// window after midnight.
func (s *Service) cacheKey(label models.WindowLabel) (string, error) {
	r, err := models.ResolveWindow(label, s.now().In(s.loc))
	if err != nil {
		return "", err
	}
	return string(label) + ":" + r.Start.Format(time.DateOnly) + ":" + r.End.Format(time.DateOnly), nil
}

func isCoded(err error) bool {
	var coded dErrors.Coded
	return errors.As(err, &coded)
}
