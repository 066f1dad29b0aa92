package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "marketlevy/pkg/domain-errors"
)

const maxCodeLength = 2048

// VerifyRequest is the body of POST /agent/scan/verify.
type VerifyRequest struct {
	Code string `json:"code"`
}

func (r *VerifyRequest) Validate() error {
	return validateCode(&r.Code)
}

// PayRequest is the body of POST /agent/scan/pay. Amount is a decimal
// string so no float rounding touches money.
type PayRequest struct {
	Code   string `json:"code"`
	Amount string `json:"amount"`

	parsedAmount decimal.Decimal
}

func (r *PayRequest) Validate() error {
	if err := validateCode(&r.Code); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "amount must be a decimal number")
	}
	r.parsedAmount = amount
	return nil
}

func validateCode(code *string) error {
	*code = strings.TrimSpace(*code)
	if *code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if len(*code) > maxCodeLength {
		return dErrors.New(dErrors.CodeValidation, "code is too long")
	}
	return nil
}
