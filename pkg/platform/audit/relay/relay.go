// Package relay drains the audit outbox into a message broker.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "marketlevy/pkg/platform/audit"
)

// Outbox is the relay's view of the outbox table.
type Outbox interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Broker delivers one outbox entry downstream. Implementations must be safe
// to call repeatedly for the same entry; delivery is at-least-once.
type Broker interface {
	Publish(ctx context.Context, entry audit.OutboxEntry) error
	Close() error
}

// Worker polls the outbox and forwards entries to a Broker. An entry is only
// marked published after the broker acknowledged it.
type Worker struct {
	outbox    Outbox
	broker    Broker
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func New(outbox Outbox, broker Broker, opts ...Option) *Worker {
	w := &Worker{
		outbox:    outbox,
		broker:    broker,
		interval:  time.Second,
		batchSize: 100,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. Broker failures are logged and retried on
// the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := w.Drain(ctx)
			if err != nil {
				w.logger.WarnContext(ctx, "audit relay batch failed", "error", err, "published", n)
			}
		}
	}
}

// Drain relays one batch and returns how many entries were published.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	var (
		published int
		pubErr    error
	)
	err := w.outbox.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			if err := w.broker.Publish(ctx, e); err != nil {
				pubErr = fmt.Errorf("publish %s: %w", e.ID, err)
				break
			}
			ids = append(ids, e.ID)
		}
		if err := w.outbox.MarkPublished(ctx, ids, w.now()); err != nil {
			return err
		}
		published = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}
	// Entries acknowledged before a broker failure stay marked.
	return published, pubErr
}
