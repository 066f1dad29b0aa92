package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "marketlevy/pkg/domain-errors"
)

// Typed identifiers keep trader, market, agent and payment ids from being
// swapped at call sites. All share the same parsing rules.
type (
	TraderID  uuid.UUID
	MarketID  uuid.UUID
	AgentID   uuid.UUID
	UserID    uuid.UUID
	PaymentID uuid.UUID
)

func (i TraderID) String() string  { return uuid.UUID(i).String() }
func (i MarketID) String() string  { return uuid.UUID(i).String() }
func (i AgentID) String() string   { return uuid.UUID(i).String() }
func (i UserID) String() string    { return uuid.UUID(i).String() }
func (i PaymentID) String() string { return uuid.UUID(i).String() }

func (i TraderID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i MarketID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i AgentID) IsNil() bool   { return uuid.UUID(i) == uuid.Nil }
func (i UserID) IsNil() bool    { return uuid.UUID(i) == uuid.Nil }
func (i PaymentID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

// NewPaymentID returns a fresh random payment id.
func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }

const maxIDLength = 64

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" || strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseTraderID(s string) (TraderID, error) {
	u, err := parseUUID("trader id", s)
	return TraderID(u), err
}

func ParseMarketID(s string) (MarketID, error) {
	u, err := parseUUID("market id", s)
	return MarketID(u), err
}

func ParseAgentID(s string) (AgentID, error) {
	u, err := parseUUID("agent id", s)
	return AgentID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID("payment id", s)
	return PaymentID(u), err
}

// Text encoding renders ids in canonical UUID form in JSON and logs.

func (i TraderID) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i MarketID) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i AgentID) MarshalText() ([]byte, error)   { return []byte(i.String()), nil }
func (i UserID) MarshalText() ([]byte, error)    { return []byte(i.String()), nil }
func (i PaymentID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *TraderID) UnmarshalText(b []byte) (err error) {
	*i, err = ParseTraderID(string(b))
	return err
}

func (i *MarketID) UnmarshalText(b []byte) (err error) {
	*i, err = ParseMarketID(string(b))
	return err
}

func (i *AgentID) UnmarshalText(b []byte) (err error) {
	*i, err = ParseAgentID(string(b))
	return err
}

func (i *UserID) UnmarshalText(b []byte) (err error) {
	*i, err = ParseUserID(string(b))
	return err
}

func (i *PaymentID) UnmarshalText(b []byte) (err error) {
	*i, err = ParsePaymentID(string(b))
	return err
}
