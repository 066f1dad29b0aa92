package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"marketlevy/internal/identity"
	ledger "marketlevy/internal/ledger/models"
	"marketlevy/internal/verification/handler/mocks"
	"marketlevy/internal/verification/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
	"marketlevy/pkg/testutil"
)

type ScanHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	agent   id.AgentID
}

func TestScanHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScanHandlerSuite))
}

func (s *ScanHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.agent = id.AgentID(uuid.New())
}

func (s *ScanHandlerSuite) do(path string, body any) (int, map[string]any) {
	req := testutil.WithAgent(testutil.NewJSONRequest(s.T(), http.MethodPost, path, body), s.agent)
	rr := testutil.DoRequest(s.router, req)
	return rr.Code, *testutil.UnmarshalResponse[map[string]any](s.T(), rr)
}

func (s *ScanHandlerSuite) TestVerify() {
	s.Run("returns the verification result", func() {
		traderID := id.TraderID(uuid.New())
		s.service.EXPECT().ScanAndVerify(gomock.Any(), s.agent, "TRADER-ID/v1.abc.0badc0de").
			Return(&models.TraderVerificationResult{
				TraderID:       traderID,
				BusinessName:   "Mama Nkechi Provisions",
				ExpectedAmount: decimal.NewFromInt(500),
				Period:         ledger.PeriodDaily,
				PaymentDue:     true,
			}, nil)

		status, body := s.do("/agent/scan/verify", map[string]string{"code": " TRADER-ID/v1.abc.0badc0de "})

		s.Equal(http.StatusOK, status)
		s.Equal(traderID.String(), body["trader_id"])
		s.Equal(true, body["payment_due"])
		s.Equal("500", body["expected_amount"])
		s.Nil(body["last_payment_date"])
	})

	s.Run("invalid code is a 400", func() {
		s.service.EXPECT().ScanAndVerify(gomock.Any(), s.agent, "nonsense").
			Return(nil, &models.InvalidCodeError{Err: &identity.MalformedCodeError{Reason: "missing scheme prefix"}})

		status, body := s.do("/agent/scan/verify", map[string]string{"code": "nonsense"})

		s.Equal(http.StatusBadRequest, status)
		s.Equal(string(dErrors.CodeInvalidCode), body["error"])
	})

	s.Run("unknown trader is a 404", func() {
		s.service.EXPECT().ScanAndVerify(gomock.Any(), s.agent, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "trader not found"))

		status, _ := s.do("/agent/scan/verify", map[string]string{"code": "TRADER-ID/v1.abc.0badc0de"})

		s.Equal(http.StatusNotFound, status)
	})

	s.Run("empty code never reaches the gateway", func() {
		status, body := s.do("/agent/scan/verify", map[string]string{"code": "  "})

		s.Equal(http.StatusBadRequest, status)
		s.Equal(string(dErrors.CodeValidation), body["error"])
	})

	s.Run("requires an agent", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/agent/scan/verify", map[string]string{"code": "x"})
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusUnauthorized, rr.Code)
	})
}

func (s *ScanHandlerSuite) TestPay() {
	s.Run("returns the receipt", func() {
		p := &ledger.LevyPayment{
			ID:                   id.NewPaymentID(),
			TraderID:             id.TraderID(uuid.New()),
			Amount:               decimal.NewFromInt(500),
			Period:               ledger.PeriodDaily,
			Status:               ledger.StatusSuccessful,
			TransactionReference: "LVY-20260610-ABCDEFGH",
		}
		s.service.EXPECT().ScanAndPay(gomock.Any(), s.agent, "TRADER-ID/v1.abc.0badc0de", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.AgentID, _ string, amount decimal.Decimal) (*ledger.LevyPayment, error) {
				s.True(amount.Equal(decimal.NewFromInt(500)))
				return p, nil
			})

		status, body := s.do("/agent/scan/pay", map[string]string{"code": "TRADER-ID/v1.abc.0badc0de", "amount": "500.00"})

		s.Equal(http.StatusOK, status)
		s.Equal("successful", body["status"])
		s.Equal("500.00", body["amount"])
		s.Equal("LVY-20260610-ABCDEFGH", body["transaction_reference"])
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   dErrors.Code
	}{
		{"already paid", &models.AlreadyPaidError{}, http.StatusBadRequest, dErrors.CodeAlreadyPaid},
		{"duplicate", &ledger.DuplicatePaymentError{}, http.StatusBadRequest, dErrors.CodeDuplicatePayment},
		{"pending confirmation", &ledger.PendingConfirmationError{Pending: &ledger.LevyPayment{TransactionReference: "LVY-20260610-ZZZZZZZZ"}},
			http.StatusConflict, dErrors.CodePendingConfirmation},
		{"audit failure", dErrors.New(dErrors.CodeInternal, "failed to write audit event"), http.StatusInternalServerError, dErrors.CodeInternal},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.service.EXPECT().ScanAndPay(gomock.Any(), s.agent, gomock.Any(), gomock.Any()).Return(nil, tc.err)

			status, body := s.do("/agent/scan/pay", map[string]string{"code": "TRADER-ID/v1.abc.0badc0de", "amount": "500"})

			s.Equal(tc.status, status)
			s.Equal(string(tc.code), body["error"])
		})
	}

	s.Run("amount must be a number", func() {
		status, body := s.do("/agent/scan/pay", map[string]string{"code": "TRADER-ID/v1.abc.0badc0de", "amount": "five hundred"})

		s.Equal(http.StatusBadRequest, status)
		s.Equal(string(dErrors.CodeValidation), body["error"])
	})
}
