package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	directory "marketlevy/internal/directory/models"
	dirmemory "marketlevy/internal/directory/store/memory"
	"marketlevy/internal/identity"
	ledger "marketlevy/internal/ledger/models"
	ledgerservice "marketlevy/internal/ledger/service"
	ledgermemory "marketlevy/internal/ledger/store/memory"
	"marketlevy/internal/verification/models"
	"marketlevy/internal/verification/service/mocks"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/platform/audit"
	"marketlevy/pkg/platform/audit/publishers/compliance"
	auditmemory "marketlevy/pkg/platform/audit/store/memory"
	"marketlevy/pkg/requestcontext"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type GatewaySuite struct {
	suite.Suite
	ctx       context.Context
	clock     *clock
	directory *dirmemory.InMemoryDirectory
	store     *ledgermemory.InMemoryLedger
	ledger    *ledgerservice.Service
	auditLog  *auditmemory.InMemoryStore
	gateway   *Service
	market    directory.Market
	trader    directory.Trader
	code      string
	agent     id.AgentID
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	lagos, err := time.LoadLocation("Africa/Lagos")
	s.Require().NoError(err)
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.ctx = requestcontext.WithDeviceLabel(s.ctx, "Android 14 / Chrome Mobile")
	s.clock = &clock{now: time.Date(2026, 6, 10, 9, 0, 0, 0, lagos)}

	s.directory = dirmemory.New()
	s.market = directory.Market{ID: id.MarketID(uuid.New()), Name: "Oja Oba", Active: true}
	s.directory.PutMarket(s.market)
	s.trader = s.addTrader(ledger.PeriodDaily)
	s.code = s.codeFor(s.trader)

	s.store = ledgermemory.New()
	s.ledger = ledgerservice.New(s.store, s.directory,
		ledgerservice.WithClock(s.clock.Now), ledgerservice.WithLocation(lagos))
	s.auditLog = auditmemory.NewInMemoryStore()
	s.gateway = s.newGateway(compliance.New(s.auditLog))
	s.agent = id.AgentID(uuid.New())
}

func (s *GatewaySuite) newGateway(publisher AuditPublisher) *Service {
	return New(s.ledger, s.directory, publisher, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func (s *GatewaySuite) addTrader(period ledger.Period) directory.Trader {
	t := directory.Trader{
		ID:            id.TraderID(uuid.New()),
		MarketID:      s.market.ID,
		BusinessName:  "Mama Nkechi Provisions",
		OccupancyType: "lock-up shop",
		Active:        true,
		LevyAmount:    decimal.NewFromInt(500),
		LevyPeriod:    period,
	}
	s.directory.PutTrader(t)
	return t
}

func (s *GatewaySuite) codeFor(t directory.Trader) string {
	code, err := identity.Encode(t)
	s.Require().NoError(err)
	return code
}

func (s *GatewaySuite) events() []audit.Event {
	events, err := s.auditLog.ListAll(s.ctx)
	s.Require().NoError(err)
	return events
}

func (s *GatewaySuite) TestScanAndVerify() {
	s.Run("unpaid trader is due", func() {
		result, err := s.gateway.ScanAndVerify(s.ctx, s.agent, s.code)
		s.Require().NoError(err)

		s.Equal(s.trader.ID, result.TraderID)
		s.Equal("Mama Nkechi Provisions", result.BusinessName)
		s.True(result.ExpectedAmount.Equal(decimal.NewFromInt(500)))
		s.Equal(ledger.PeriodDaily, result.Period)
		s.Nil(result.LastPaymentDate)
		s.True(result.PaymentDue)

		events := s.events()
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventTraderScanned), events[0].Action)
		s.Equal(audit.OutcomeOK, events[0].Outcome)
		s.Equal(s.agent, events[0].AgentID)
		s.Equal(s.trader.ID, events[0].TraderID)
		s.Equal("req-1", events[0].RequestID)
		s.Equal("Android 14 / Chrome Mobile", events[0].DeviceLabel)
	})

	s.Run("garbage is an invalid code", func() {
		s.auditLog.Clear()
		_, err := s.gateway.ScanAndVerify(s.ctx, s.agent, "https://example.com/not-a-trader")

		var invalid *models.InvalidCodeError
		s.Require().ErrorAs(err, &invalid)
		var malformed *identity.MalformedCodeError
		s.ErrorAs(err, &malformed)

		events := s.events()
		s.Require().Len(events, 1)
		s.Equal(string(dErrors.CodeInvalidCode), events[0].Outcome)
		s.True(events[0].TraderID.IsNil())
	})

	s.Run("unknown version is an invalid code", func() {
		_, err := s.gateway.ScanAndVerify(s.ctx, s.agent, "TRADER-ID/v9.e30.00000000")

		var unknown *identity.UnknownSchemeVersionError
		s.ErrorAs(err, &unknown)
		s.Equal(dErrors.CodeInvalidCode, dErrors.CodeOf(err))
	})

	s.Run("trader missing from the directory", func() {
		s.auditLog.Clear()
		ghost := directory.Trader{ID: id.TraderID(uuid.New()), MarketID: s.market.ID, BusinessName: "Gone"}
		_, err := s.gateway.ScanAndVerify(s.ctx, s.agent, s.codeFor(ghost))

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		events := s.events()
		s.Require().Len(events, 1)
		s.Equal(ghost.ID, events[0].TraderID, "decoded id is audited")
	})

	s.Run("missing agent", func() {
		s.auditLog.Clear()
		_, err := s.gateway.ScanAndVerify(s.ctx, id.AgentID{}, s.code)

		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Empty(s.events())
	})
}

func (s *GatewaySuite) TestScanAndPayThenAlreadyPaid() {
	payment, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
	s.Require().NoError(err)
	s.Equal(ledger.StatusSuccessful, payment.Status)
	s.True(payment.Amount.Equal(decimal.NewFromInt(500)))
	s.Equal(s.agent, payment.CollectorID)
	s.Require().NotNil(payment.ConfirmedBy)
	s.Equal(id.UserID(s.agent), *payment.ConfirmedBy)

	s.clock.Advance(3 * time.Hour)
	_, err = s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
	var paid *models.AlreadyPaidError
	s.Require().ErrorAs(err, &paid)
	s.Equal(payment.ID, paid.LastPayment.ID)

	result, err := s.gateway.ScanAndVerify(s.ctx, s.agent, s.code)
	s.Require().NoError(err)
	s.False(result.PaymentDue)
	s.Require().NotNil(result.LastPaymentDate)
	s.True(payment.PaymentDate.Equal(*result.LastPaymentDate))

	events := s.events()
	s.Require().Len(events, 3, "one event per call")
	s.Equal(string(audit.EventScanPayAttempt), events[0].Action)
	s.Equal(audit.OutcomeOK, events[0].Outcome)
	s.Equal(payment.ID, events[0].PaymentID)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal(string(dErrors.CodeAlreadyPaid), events[1].Outcome)
	s.Equal(string(audit.EventTraderScanned), events[2].Action)
}

func (s *GatewaySuite) TestNextWindowIsDueAgain() {
	_, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
	s.Require().NoError(err)

	s.clock.Advance(24 * time.Hour)
	result, err := s.gateway.ScanAndVerify(s.ctx, s.agent, s.code)
	s.Require().NoError(err)
	s.True(result.PaymentDue)
	s.NotNil(result.LastPaymentDate)

	_, err = s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
	s.NoError(err)
}

func (s *GatewaySuite) TestWeeklyTraderPaysOncePerWeek() {
	weekly := s.addTrader(ledger.PeriodWeekly)
	code := s.codeFor(weekly)

	_, err := s.gateway.ScanAndPay(s.ctx, s.agent, code, decimal.NewFromInt(500))
	s.Require().NoError(err)

	// Wednesday to Friday of the same ISO week.
	s.clock.Advance(48 * time.Hour)
	_, err = s.gateway.ScanAndPay(s.ctx, s.agent, code, decimal.NewFromInt(500))
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyPaid))

	// Following Monday.
	s.clock.Advance(72 * time.Hour)
	_, err = s.gateway.ScanAndPay(s.ctx, s.agent, code, decimal.NewFromInt(500))
	s.NoError(err)
}

func (s *GatewaySuite) recordPending(agent id.AgentID, amount int64) *ledger.LevyPayment {
	p, err := s.ledger.RecordPayment(s.ctx, ledger.RecordRequest{
		TraderID:    s.trader.ID,
		MarketID:    s.trader.MarketID,
		CollectorID: agent,
		Amount:      decimal.NewFromInt(amount),
		Period:      s.trader.LevyPeriod,
	})
	s.Require().NoError(err)
	return p
}

func (s *GatewaySuite) TestInterruptedCollection() {
	s.Run("same agent and amount resumes", func() {
		pending := s.recordPending(s.agent, 500)

		payment, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
		s.Require().NoError(err)
		s.Equal(pending.ID, payment.ID, "no second attempt is created")
		s.Equal(pending.TransactionReference, payment.TransactionReference)
		s.Equal(ledger.StatusSuccessful, payment.Status)

		events := s.events()
		s.Require().Len(events, 1)
		s.Equal("resumed pending payment", events[0].Reason)
		s.Equal(pending.ID, events[0].PaymentID)
	})
}

func (s *GatewaySuite) TestPendingByAnotherAgent() {
	other := id.AgentID(uuid.New())
	pending := s.recordPending(other, 500)

	_, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))

	var conflict *ledger.PendingConfirmationError
	s.Require().ErrorAs(err, &conflict)
	s.Equal(pending.ID, conflict.Pending.ID)

	stored, err := s.ledger.GetPayment(s.ctx, pending.ID)
	s.Require().NoError(err)
	s.Equal(ledger.StatusPending, stored.Status, "left for reconciliation")
	s.Equal(string(dErrors.CodePendingConfirmation), s.events()[0].Outcome)
}

func (s *GatewaySuite) TestPendingWithDifferentAmount() {
	s.recordPending(s.agent, 300)

	_, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))

	s.True(dErrors.HasCode(err, dErrors.CodePendingConfirmation))
}

func (s *GatewaySuite) TestRejectedAttemptDoesNotBlock() {
	pending := s.recordPending(id.AgentID(uuid.New()), 500)
	_, err := s.ledger.RejectPayment(s.ctx, pending.ID, id.UserID(uuid.New()), "cash never handed over")
	s.Require().NoError(err)

	payment, err := s.gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))
	s.Require().NoError(err)
	s.NotEqual(pending.ID, payment.ID)
}

func (s *GatewaySuite) TestConcurrentAgentsSettleOnce() {
	const agents = 20
	var wg sync.WaitGroup
	results := make(chan error, agents)
	for range agents {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.gateway.ScanAndPay(s.ctx, id.AgentID(uuid.New()), s.code, decimal.NewFromInt(500))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		code := dErrors.CodeOf(err)
		s.Contains([]dErrors.Code{
			dErrors.CodeAlreadyPaid, dErrors.CodeDuplicatePayment, dErrors.CodePendingConfirmation,
		}, code, "unexpected error: %v", err)
	}
	s.Equal(1, succeeded)

	today, err := ledger.NewDateRange(s.clock.Now(), s.clock.Now(), s.clock.Now().Location())
	s.Require().NoError(err)
	n, err := s.ledger.CountPayments(s.ctx, today)
	s.Require().NoError(err)
	s.EqualValues(1, n)
	s.Len(s.events(), agents)
}

func (s *GatewaySuite) TestAuditFailureFailsTheCall() {
	ctrl := gomock.NewController(s.T())
	publisher := mocks.NewMockAuditPublisher(ctrl)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := s.newGateway(publisher).ScanAndVerify(s.ctx, s.agent, s.code)

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
}

func (s *GatewaySuite) TestAuditEventCarriesOutcomeOfFailedPay() {
	ctrl := gomock.NewController(s.T())
	publisher := mocks.NewMockAuditPublisher(ctrl)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(audit.EventScanPayAttempt), e.Action)
		s.Equal(string(dErrors.CodeValidation), e.Outcome)
		s.NotEmpty(e.Reason)
		return nil
	})

	_, err := s.newGateway(publisher).ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(-5))

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *GatewaySuite) TestLedgerErrorsPropagateUnchanged() {
	ctrl := gomock.NewController(s.T())
	ledgerMock := mocks.NewMockLedger(ctrl)
	publisher := mocks.NewMockAuditPublisher(ctrl)
	window := ledger.Window{Start: s.clock.Now().Truncate(time.Hour), End: s.clock.Now().Add(time.Hour)}
	dup := &ledger.DuplicatePaymentError{
		TraderID: s.trader.ID,
		Window:   window,
		Existing: &ledger.LevyPayment{ID: id.NewPaymentID(), Status: ledger.StatusSuccessful},
	}

	ledgerMock.EXPECT().CurrentWindow(ledger.PeriodDaily).Return(window, nil)
	ledgerMock.EXPECT().LatestSettled(gomock.Any(), s.trader.ID).Return(nil, nil)
	ledgerMock.EXPECT().OpenPayment(gomock.Any(), s.trader.ID, window).Return(nil, nil)
	ledgerMock.EXPECT().RecordPayment(gomock.Any(), gomock.Any()).Return(nil, dup)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	gateway := New(ledgerMock, s.directory, publisher, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err := gateway.ScanAndPay(s.ctx, s.agent, s.code, decimal.NewFromInt(500))

	s.Same(dup, err)
}
