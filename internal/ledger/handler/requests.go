package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketlevy/internal/ledger/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
)

const (
	dateLayout       = "2006-01-02"
	defaultRangeDays = 30
	maxRangeDays     = 366
)

// RecordRequest is the body of POST /admin/levies.
type RecordRequest struct {
	TraderID    string `json:"trader_id"`
	MarketID    string `json:"market_id"`
	CollectorID string `json:"collector_id"`
	Amount      string `json:"amount"`
	Period      string `json:"period"`
	Notes       string `json:"notes"`

	parsed models.RecordRequest
}

// Validate parses the body. Business rules (positive amount, known trader)
// are checked by the ledger.
func (r *RecordRequest) Validate() error {
	traderID, err := id.ParseTraderID(strings.TrimSpace(r.TraderID))
	if err != nil {
		return err
	}
	marketID, err := id.ParseMarketID(strings.TrimSpace(r.MarketID))
	if err != nil {
		return err
	}
	collectorID, err := id.ParseAgentID(strings.TrimSpace(r.CollectorID))
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "amount must be a decimal number")
	}
	period, err := models.ParsePeriod(r.Period)
	if err != nil {
		return err
	}
	r.parsed = models.RecordRequest{
		TraderID:    traderID,
		MarketID:    marketID,
		CollectorID: collectorID,
		Amount:      amount,
		Period:      period,
		Notes:       strings.TrimSpace(r.Notes),
	}
	return nil
}

func (r *RecordRequest) toModel() models.RecordRequest {
	return r.parsed
}

// RejectRequest is the body of POST /admin/levies/{id}/reject.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	reason, err := models.ValidateRejectionReason(r.Reason)
	if err != nil {
		return err
	}
	r.Reason = reason
	return nil
}

func parseDateRange(from, to string, now time.Time, loc *time.Location) (models.DateRange, error) {
	end := now.In(loc)
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return models.DateRange{}, dErrors.New(dErrors.CodeValidation, "to must be a YYYY-MM-DD date")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultRangeDays - 1))
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return models.DateRange{}, dErrors.New(dErrors.CodeValidation, "from must be a YYYY-MM-DD date")
		}
		start = t
	}
	r, err := models.NewDateRange(start, end, loc)
	if err != nil {
		return models.DateRange{}, err
	}
	if r.Days() > maxRangeDays {
		return models.DateRange{}, dErrors.New(dErrors.CodeValidation, "date range is longer than a year")
	}
	return r, nil
}
