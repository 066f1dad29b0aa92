package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketlevy/internal/directory/models"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

// InMemoryDirectory is a seedable directory for tests and the memory profile.
type InMemoryDirectory struct {
	mu         sync.RWMutex
	traders    map[id.TraderID]*models.Trader
	markets    map[id.MarketID]*models.Market
	caretakers map[uuid.UUID]*models.Caretaker
}

func New() *InMemoryDirectory {
	return &InMemoryDirectory{
		traders:    make(map[id.TraderID]*models.Trader),
		markets:    make(map[id.MarketID]*models.Market),
		caretakers: make(map[uuid.UUID]*models.Caretaker),
	}
}

func (s *InMemoryDirectory) PutMarket(m models.Market) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets[m.ID] = &m
}

func (s *InMemoryDirectory) PutTrader(t models.Trader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traders[t.ID] = &t
}

func (s *InMemoryDirectory) PutCaretaker(c models.Caretaker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caretakers[c.ID] = &c
}

// SetTraderActive simulates a concurrent deactivation by the directory owner.
func (s *InMemoryDirectory) SetTraderActive(traderID id.TraderID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.traders[traderID]; ok {
		t.Active = active
	}
}

func (s *InMemoryDirectory) FindTrader(_ context.Context, traderID id.TraderID) (*models.Trader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.traders[traderID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryDirectory) FindMarket(_ context.Context, marketID id.MarketID) (*models.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.markets[marketID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// Counts computes directory aggregates; from/to bound CreatedAt half-open.
func (s *InMemoryDirectory) Counts(_ context.Context, from, to time.Time) (models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c models.Counts
	in := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }
	for _, t := range s.traders {
		if in(t.CreatedAt) {
			c.TradersRegistered++
		}
		if t.Active && t.CreatedAt.Before(to) {
			c.ActiveTraders++
		}
	}
	for _, ct := range s.caretakers {
		if in(ct.CreatedAt) {
			c.CaretakersRegistered++
		}
	}
	for _, m := range s.markets {
		if m.Active && m.CreatedAt.Before(to) {
			c.ActiveMarkets++
		}
	}
	return c, nil
}
