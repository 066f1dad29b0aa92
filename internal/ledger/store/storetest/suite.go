// Package storetest is the behaviour every ledger store must share. Each
// store package runs LedgerSuite against its own backend.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"marketlevy/internal/ledger/models"
	"marketlevy/internal/ledger/service"
	"marketlevy/internal/ledger/store"
	id "marketlevy/pkg/domain"
	"marketlevy/pkg/platform/sentinel"
)

// LedgerSuite needs NewStore to return an empty store for every test.
type LedgerSuite struct {
	suite.Suite
	NewStore func() service.Store

	ctx    context.Context
	store  service.Store
	trader id.TraderID
	market id.MarketID
	agent  id.AgentID
	day    time.Time
	seq    int
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
	s.trader = id.TraderID(uuid.New())
	s.market = id.MarketID(uuid.New())
	s.agent = id.AgentID(uuid.New())
	s.day = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
}

func (s *LedgerSuite) payment(trader id.TraderID, at time.Time, status models.Status, amount string) *models.LevyPayment {
	s.seq++
	w, err := models.GetBillingWindow(models.PeriodDaily, at)
	s.Require().NoError(err)
	p := &models.LevyPayment{
		ID:                   id.NewPaymentID(),
		TraderID:             trader,
		MarketID:             s.market,
		CollectorID:          s.agent,
		Amount:               decimal.RequireFromString(amount),
		Period:               models.PeriodDaily,
		PaymentDate:          at,
		BillingWindowStart:   w.Start,
		BillingWindowEnd:     w.End,
		Status:               status,
		TransactionReference: fmt.Sprintf("LVY-%s-AAAA%04d", at.Format("20060102"), s.seq),
		CreatedAt:            at,
		UpdatedAt:            at,
	}
	if status.IsSettled() {
		settled := at
		p.SettledAt = &settled
	}
	return p
}

func (s *LedgerSuite) TestCreateAndFind() {
	actor := id.UserID(uuid.New())
	p := s.payment(s.trader, s.day.Add(9*time.Hour), models.StatusPending, "500.25")
	p.Notes = "morning round"
	p.ConfirmedBy = &actor
	s.Require().NoError(s.store.Create(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.TraderID, got.TraderID)
	s.Equal(p.MarketID, got.MarketID)
	s.Equal(p.CollectorID, got.CollectorID)
	s.True(p.Amount.Equal(got.Amount), "amount %s", got.Amount)
	s.Equal(models.PeriodDaily, got.Period)
	s.Equal(models.StatusPending, got.Status)
	s.Equal(p.TransactionReference, got.TransactionReference)
	s.Equal("morning round", got.Notes)
	s.True(p.PaymentDate.Equal(got.PaymentDate))
	s.True(p.BillingWindowStart.Equal(got.BillingWindowStart))
	s.True(p.BillingWindowEnd.Equal(got.BillingWindowEnd))
	s.Require().NotNil(got.ConfirmedBy)
	s.Equal(actor, *got.ConfirmedBy)
	s.Nil(got.RejectedBy)
	s.Nil(got.SettledAt)

	_, err = s.store.FindByID(s.ctx, id.NewPaymentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LedgerSuite) TestWindowIsUnique() {
	first := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusPending, "500")
	s.Require().NoError(s.store.Create(s.ctx, first))

	second := s.payment(s.trader, s.day.Add(15*time.Hour), models.StatusPending, "500")
	err := s.store.Create(s.ctx, second)
	s.ErrorIs(err, store.ErrWindowTaken)
	s.ErrorIs(err, sentinel.ErrConflict)

	other := s.payment(id.TraderID(uuid.New()), s.day.Add(15*time.Hour), models.StatusPending, "500")
	s.NoError(s.store.Create(s.ctx, other), "another trader shares the window")

	tomorrow := s.payment(s.trader, s.day.AddDate(0, 0, 1), models.StatusPending, "500")
	s.NoError(s.store.Create(s.ctx, tomorrow))
}

func (s *LedgerSuite) TestRejectedPaymentFreesWindow() {
	first := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusPending, "500")
	s.Require().NoError(s.store.Create(s.ctx, first))

	first.ApplyRejection(id.UserID(uuid.New()), "counterfeit note", s.day.Add(9*time.Hour))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, first))

	retry := s.payment(s.trader, s.day.Add(10*time.Hour), models.StatusPending, "500")
	s.NoError(s.store.Create(s.ctx, retry))

	got, err := s.store.FindByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, got.Status)
	s.Equal("counterfeit note", got.RejectionReason)
	s.NotNil(got.RejectedBy)
}

func (s *LedgerSuite) TestReferenceIsUnique() {
	first := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusPending, "500")
	s.Require().NoError(s.store.Create(s.ctx, first))

	clash := s.payment(id.TraderID(uuid.New()), s.day.Add(8*time.Hour), models.StatusPending, "500")
	clash.TransactionReference = first.TransactionReference
	s.ErrorIs(s.store.Create(s.ctx, clash), store.ErrReferenceTaken)
}

func (s *LedgerSuite) TestUpdateStatusOnlyFromPending() {
	p := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusPending, "500")
	s.Require().NoError(s.store.Create(s.ctx, p))

	actor := id.UserID(uuid.New())
	p.ApplyConfirmation(actor, s.day.Add(8*time.Hour+time.Minute))
	s.Require().NoError(s.store.UpdateStatus(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSuccessful, got.Status)
	s.Require().NotNil(got.SettledAt)
	s.True(p.SettledAt.Equal(*got.SettledAt))
	s.Equal(actor, *got.ConfirmedBy)

	p.ApplyRejection(actor, "too late", s.day.Add(9*time.Hour))
	s.ErrorIs(s.store.UpdateStatus(s.ctx, p), sentinel.ErrInvalidState)

	missing := s.payment(s.trader, s.day, models.StatusPending, "1")
	missing.ApplyConfirmation(actor, s.day)
	s.ErrorIs(s.store.UpdateStatus(s.ctx, missing), sentinel.ErrNotFound)
}

func (s *LedgerSuite) TestFindActiveInWindowPutsSettledFirst() {
	rejected := s.payment(s.trader, s.day.Add(7*time.Hour), models.StatusRejected, "500")
	s.Require().NoError(s.store.Create(s.ctx, rejected))
	settled := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusPaid, "500")
	s.Require().NoError(s.store.Create(s.ctx, settled))

	w, err := models.GetBillingWindow(models.PeriodDaily, s.day)
	s.Require().NoError(err)
	got, err := s.store.FindActiveInWindow(s.ctx, s.trader, w)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(settled.ID, got[0].ID)

	weekly, err := models.GetBillingWindow(models.PeriodWeekly, s.day)
	s.Require().NoError(err)
	pendingLater := s.payment(s.trader, s.day.AddDate(0, 0, 1).Add(8*time.Hour), models.StatusPending, "500")
	s.Require().NoError(s.store.Create(s.ctx, pendingLater))

	got, err = s.store.FindActiveInWindow(s.ctx, s.trader, weekly)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(settled.ID, got[0].ID)
	s.Equal(pendingLater.ID, got[1].ID)
}

func (s *LedgerSuite) TestListByTraderNewestFirst() {
	var ids []id.PaymentID
	for i := 0; i < 3; i++ {
		p := s.payment(s.trader, s.day.AddDate(0, 0, i).Add(10*time.Hour), models.StatusSuccessful, "100")
		s.Require().NoError(s.store.Create(s.ctx, p))
		ids = append(ids, p.ID)
	}
	s.Require().NoError(s.store.Create(s.ctx,
		s.payment(id.TraderID(uuid.New()), s.day.Add(10*time.Hour), models.StatusSuccessful, "100")))

	got, err := s.store.ListByTrader(s.ctx, s.trader, s.day, s.day.AddDate(0, 0, 2))
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(ids[1], got[0].ID)
	s.Equal(ids[0], got[1].ID)

	empty, err := s.store.ListByTrader(s.ctx, s.trader, s.day.AddDate(1, 0, 0), s.day.AddDate(1, 0, 1))
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *LedgerSuite) TestLatestSettled() {
	_, err := s.store.LatestSettled(s.ctx, s.trader)
	s.ErrorIs(err, sentinel.ErrNotFound)

	old := s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusSuccessful, "100")
	s.Require().NoError(s.store.Create(s.ctx, old))
	newer := s.payment(s.trader, s.day.AddDate(0, 0, 1).Add(8*time.Hour), models.StatusPaid, "100")
	s.Require().NoError(s.store.Create(s.ctx, newer))
	pending := s.payment(s.trader, s.day.AddDate(0, 0, 2).Add(8*time.Hour), models.StatusPending, "100")
	s.Require().NoError(s.store.Create(s.ctx, pending))

	got, err := s.store.LatestSettled(s.ctx, s.trader)
	s.Require().NoError(err)
	s.Equal(newer.ID, got.ID)
}

func (s *LedgerSuite) TestAggregates() {
	other := id.TraderID(uuid.New())
	for _, p := range []*models.LevyPayment{
		s.payment(s.trader, s.day.Add(8*time.Hour), models.StatusSuccessful, "100.10"),
		s.payment(s.trader, s.day.AddDate(0, 0, 1).Add(8*time.Hour), models.StatusPaid, "200.20"),
		s.payment(other, s.day.Add(9*time.Hour), models.StatusSuccessful, "0.05"),
		s.payment(other, s.day.AddDate(0, 0, 1).Add(9*time.Hour), models.StatusPending, "999"),
		s.payment(other, s.day.AddDate(0, 0, 2).Add(9*time.Hour), models.StatusRejected, "999"),
		s.payment(other, s.day.AddDate(0, 0, 5), models.StatusSuccessful, "999"),
	} {
		s.Require().NoError(s.store.Create(s.ctx, p))
	}
	from, to := s.day, s.day.AddDate(0, 0, 3)

	total, err := s.store.SumSettled(s.ctx, from, to)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("300.35").Equal(total), "total %s", total)

	n, err := s.store.CountSettled(s.ctx, from, to)
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	traders, err := s.store.CountPayingTraders(s.ctx, from, to)
	s.Require().NoError(err)
	s.Equal(int64(2), traders)

	zero, err := s.store.SumSettled(s.ctx, to.AddDate(1, 0, 0), to.AddDate(1, 0, 1))
	s.Require().NoError(err)
	s.True(zero.IsZero())
}

// TestConcurrentCreateOneWinner races inserts for the same trader and window.
// Exactly one must land; the rest must see ErrWindowTaken.
func (s *LedgerSuite) TestConcurrentCreateOneWinner() {
	const attempts = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
		other     atomic.Int32
	)
	at := s.day.Add(11 * time.Hour)
	payments := make([]*models.LevyPayment, attempts)
	for i := range payments {
		payments[i] = s.payment(s.trader, at, models.StatusPending, "500")
	}

	start := make(chan struct{})
	for _, p := range payments {
		wg.Add(1)
		go func(p *models.LevyPayment) {
			defer wg.Done()
			<-start
			err := s.store.Create(s.ctx, p)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, store.ErrWindowTaken):
				conflicts.Add(1)
			default:
				other.Add(1)
			}
		}(p)
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(attempts-1), conflicts.Load())
	s.Zero(other.Load())
}
