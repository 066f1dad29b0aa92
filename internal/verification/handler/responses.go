package handler

import (
	"time"

	ledger "marketlevy/internal/ledger/models"
)

// PaymentResponse is the receipt shown on the agent's device.
type PaymentResponse struct {
	PaymentID            string    `json:"payment_id"`
	TraderID             string    `json:"trader_id"`
	Amount               string    `json:"amount"`
	Period               string    `json:"period"`
	Status               string    `json:"status"`
	TransactionReference string    `json:"transaction_reference"`
	PaymentDate          time.Time `json:"payment_date"`
}

func FromPayment(p *ledger.LevyPayment) PaymentResponse {
	return PaymentResponse{
		PaymentID:            p.ID.String(),
		TraderID:             p.TraderID.String(),
		Amount:               p.Amount.StringFixed(2),
		Period:               string(p.Period),
		Status:               string(p.Status),
		TransactionReference: p.TransactionReference,
		PaymentDate:          p.PaymentDate,
	}
}
