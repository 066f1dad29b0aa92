package service

import (
	"context"
	"log/slog"
	"time"
)

// Refresher precomputes every dashboard window on a fixed interval. It runs
// on its own goroutine and never touches the request path.
type Refresher struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewRefresher(service *Service, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{service: service, interval: interval, logger: logger}
}

// Run refreshes once immediately and then on every tick until ctx is
// cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.refresh(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	started := time.Now()
	if err := r.service.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.WarnContext(ctx, "dashboard refresh failed", "error", err)
		return
	}
	r.logger.DebugContext(ctx, "dashboard refreshed", "duration", time.Since(started))
}
