package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketlevy/internal/ledger/models"
	"marketlevy/internal/ledger/store"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

type windowKey struct {
	trader id.TraderID
	start  int64
}

// InMemoryLedger keeps payments in maps guarded by one mutex. It enforces the
// same unique keys as the SQL schema so the service behaves identically
// against it.
type InMemoryLedger struct {
	mu         sync.RWMutex
	payments   map[id.PaymentID]*models.LevyPayment
	windows    map[windowKey]id.PaymentID
	references map[string]id.PaymentID
}

func New() *InMemoryLedger {
	return &InMemoryLedger{
		payments:   make(map[id.PaymentID]*models.LevyPayment),
		windows:    make(map[windowKey]id.PaymentID),
		references: make(map[string]id.PaymentID),
	}
}

func keyOf(p *models.LevyPayment) windowKey {
	return windowKey{trader: p.TraderID, start: p.BillingWindowStart.UnixNano()}
}

func (s *InMemoryLedger) Create(_ context.Context, p *models.LevyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[p.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.references[p.TransactionReference]; ok {
		return store.ErrReferenceTaken
	}
	if p.Status != models.StatusRejected {
		if _, ok := s.windows[keyOf(p)]; ok {
			return store.ErrWindowTaken
		}
		s.windows[keyOf(p)] = p.ID
	}
	cp := *p
	s.payments[p.ID] = &cp
	s.references[p.TransactionReference] = p.ID
	return nil
}

func (s *InMemoryLedger) FindByID(_ context.Context, paymentID id.PaymentID) (*models.LevyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryLedger) FindActiveInWindow(_ context.Context, traderID id.TraderID, w models.Window) ([]*models.LevyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LevyPayment
	for _, p := range s.payments {
		if p.TraderID != traderID || p.Status == models.StatusRejected || !w.Contains(p.PaymentDate) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status.IsSettled() != out[j].Status.IsSettled() {
			return out[i].Status.IsSettled()
		}
		return out[i].PaymentDate.After(out[j].PaymentDate)
	})
	return out, nil
}

func (s *InMemoryLedger) ListByTrader(_ context.Context, traderID id.TraderID, from, to time.Time) ([]*models.LevyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := models.Window{Start: from, End: to}
	out := make([]*models.LevyPayment, 0)
	for _, p := range s.payments {
		if p.TraderID == traderID && w.Contains(p.PaymentDate) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortByDateDesc(out)
	return out, nil
}

func (s *InMemoryLedger) LatestSettled(_ context.Context, traderID id.TraderID) (*models.LevyPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.LevyPayment
	for _, p := range s.payments {
		if p.TraderID != traderID || !p.Status.IsSettled() {
			continue
		}
		if latest == nil || p.PaymentDate.After(latest.PaymentDate) {
			latest = p
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *InMemoryLedger) UpdateStatus(_ context.Context, p *models.LevyPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.payments[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != models.StatusPending {
		return sentinel.ErrInvalidState
	}
	current.Status = p.Status
	current.RejectionReason = p.RejectionReason
	current.ConfirmedBy = p.ConfirmedBy
	current.RejectedBy = p.RejectedBy
	current.SettledAt = p.SettledAt
	current.UpdatedAt = p.UpdatedAt
	if current.Status == models.StatusRejected {
		// Rejected rows leave the partial unique index.
		delete(s.windows, keyOf(current))
	}
	return nil
}

func (s *InMemoryLedger) SumSettled(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	s.eachSettled(from, to, func(p *models.LevyPayment) { total = total.Add(p.Amount) })
	return total, nil
}

func (s *InMemoryLedger) CountSettled(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	s.eachSettled(from, to, func(*models.LevyPayment) { n++ })
	return n, nil
}

func (s *InMemoryLedger) CountPayingTraders(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[id.TraderID]struct{})
	s.eachSettled(from, to, func(p *models.LevyPayment) { seen[p.TraderID] = struct{}{} })
	return int64(len(seen)), nil
}

// eachSettled must be called with the read lock held.
func (s *InMemoryLedger) eachSettled(from, to time.Time, fn func(*models.LevyPayment)) {
	w := models.Window{Start: from, End: to}
	for _, p := range s.payments {
		if p.Status.IsSettled() && w.Contains(p.PaymentDate) {
			fn(p)
		}
	}
}

func sortByDateDesc(ps []*models.LevyPayment) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].PaymentDate.Equal(ps[j].PaymentDate) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].PaymentDate.After(ps[j].PaymentDate)
	})
}
