package handler

import (
	"time"

	"marketlevy/internal/ledger/models"
)

// PaymentResponse is the wire form of a levy payment.
type PaymentResponse struct {
	ID                   string     `json:"id"`
	TraderID             string     `json:"trader_id"`
	MarketID             string     `json:"market_id"`
	CollectorID          string     `json:"collector_id"`
	Amount               string     `json:"amount"`
	Period               string     `json:"period"`
	PaymentDate          time.Time  `json:"payment_date"`
	BillingWindowStart   time.Time  `json:"billing_window_start"`
	BillingWindowEnd     time.Time  `json:"billing_window_end"`
	Status               string     `json:"status"`
	TransactionReference string     `json:"transaction_reference"`
	Notes                string     `json:"notes,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	ConfirmedBy          string     `json:"confirmed_by,omitempty"`
	RejectedBy           string     `json:"rejected_by,omitempty"`
	SettledAt            *time.Time `json:"settled_at,omitempty"`
}

func FromPayment(p *models.LevyPayment) PaymentResponse {
	resp := PaymentResponse{
		ID:                   p.ID.String(),
		TraderID:             p.TraderID.String(),
		MarketID:             p.MarketID.String(),
		CollectorID:          p.CollectorID.String(),
		Amount:               p.Amount.StringFixed(2),
		Period:               string(p.Period),
		PaymentDate:          p.PaymentDate,
		BillingWindowStart:   p.BillingWindowStart,
		BillingWindowEnd:     p.BillingWindowEnd,
		Status:               string(p.Status),
		TransactionReference: p.TransactionReference,
		Notes:                p.Notes,
		RejectionReason:      p.RejectionReason,
		SettledAt:            p.SettledAt,
	}
	if p.ConfirmedBy != nil {
		resp.ConfirmedBy = p.ConfirmedBy.String()
	}
	if p.RejectedBy != nil {
		resp.RejectedBy = p.RejectedBy.String()
	}
	return resp
}

// PaymentListResponse is the body of the trader listing.
type PaymentListResponse struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Payments []PaymentResponse `json:"payments"`
}

func FromPayments(ps []*models.LevyPayment, r models.DateRange) PaymentListResponse {
	out := PaymentListResponse{
		From:     r.Start.Format(dateLayout),
		To:       r.End.Format(dateLayout),
		Payments: make([]PaymentResponse, 0, len(ps)),
	}
	for _, p := range ps {
		out.Payments = append(out.Payments, FromPayment(p))
	}
	return out
}
