// Package identity encodes and decodes the scannable trader identity code.
//
// A code looks like
//
//	TRADER-ID/v1.<base64url body>.<crc32 hex>
//
// where the body is compact JSON. The text format is printed on trader cards
// and must stay readable by every later release. Decoding is pure parsing;
// whether the trader still exists is the caller's question.
package identity

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	directory "marketlevy/internal/directory/models"
	id "marketlevy/pkg/domain"
	dErrors "marketlevy/pkg/domain-errors"
)

const (
	SchemePrefix = "TRADER-ID/"
	VersionV1    = "v1"
	SchemaTagV1  = SchemePrefix + VersionV1
)

const (
	checksumLength = 8
	maxCodeLength  = 2048
)

var versionPattern = regexp.MustCompile(`^v[0-9]{1,3}$`)

var encoding = base64.RawURLEncoding

// IdentityPayload is the decoded content of a code. It is never persisted.
type IdentityPayload struct {
	TraderID     id.TraderID
	MarketID     id.MarketID
	BusinessName string
	IssuedAt     time.Time
	SchemaTag    string
}

type wireBody struct {
	TraderID     string `json:"tid"`
	MarketID     string `json:"mid"`
	BusinessName string `json:"bn"`
	IssuedAt     int64  `json:"iat"`
}

// MalformedCodeError reports a code that is not a trader identity code or
// that cannot be parsed.
type MalformedCodeError struct {
	Reason string
}

func (e *MalformedCodeError) Error() string {
	return "malformed identity code: " + e.Reason
}

func (e *MalformedCodeError) ErrorCode() dErrors.Code { return dErrors.CodeMalformedCode }

// UnknownSchemeVersionError reports a well-formed code with a version tag
// this build does not understand.
type UnknownSchemeVersionError struct {
	Version string
}

func (e *UnknownSchemeVersionError) Error() string {
	return fmt.Sprintf("unknown identity code version %q", e.Version)
}

func (e *UnknownSchemeVersionError) ErrorCode() dErrors.Code {
	return dErrors.CodeUnknownSchemeVersion
}

// Codec encodes and decodes identity codes. The zero value is not usable;
// use NewCodec.
type Codec struct {
	now func() time.Time
}

type Option func(*Codec)

// WithClock sets the issuance clock.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Encode issues a code for trader using the wall clock.
func Encode(trader directory.Trader) (string, error) {
	return defaultCodec.Encode(trader)
}

// Decode parses a code.
func Decode(code string) (*IdentityPayload, error) {
	return defaultCodec.Decode(code)
}

// Encode serialises trader into a code. Two calls with the same trader and
// the same clock reading produce the same code.
func (c *Codec) Encode(trader directory.Trader) (string, error) {
	if trader.ID.IsNil() {
		return "", dErrors.New(dErrors.CodeValidation, "trader id is required")
	}
	if trader.MarketID.IsNil() {
		return "", dErrors.New(dErrors.CodeValidation, "market id is required")
	}
	raw, err := json.Marshal(wireBody{
		TraderID:     trader.ID.String(),
		MarketID:     trader.MarketID.String(),
		BusinessName: trader.BusinessName,
		IssuedAt:     c.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal identity body: %w", err)
	}
	body := encoding.EncodeToString(raw)
	return SchemaTagV1 + "." + body + "." + checksum(body), nil
}

// Decode parses code. It returns *MalformedCodeError or
// *UnknownSchemeVersionError on failure.
func (c *Codec) Decode(code string) (*IdentityPayload, error) {
	code = strings.TrimSpace(code)
	if len(code) > maxCodeLength {
		return nil, &MalformedCodeError{Reason: "code is too long"}
	}
	rest, ok := strings.CutPrefix(code, SchemePrefix)
	if !ok {
		return nil, &MalformedCodeError{Reason: "missing scheme prefix"}
	}
	// The version tag is read before anything else so a later version may
	// change the body layout.
	version, payload, _ := strings.Cut(rest, ".")
	if !versionPattern.MatchString(version) {
		return nil, &MalformedCodeError{Reason: "invalid version tag"}
	}
	if version != VersionV1 {
		return nil, &UnknownSchemeVersionError{Version: version}
	}
	body, sum, ok := strings.Cut(payload, ".")
	if !ok || body == "" || strings.Contains(sum, ".") {
		return nil, &MalformedCodeError{Reason: "expected body and checksum"}
	}
	if len(sum) != checksumLength || !strings.EqualFold(sum, checksum(body)) {
		return nil, &MalformedCodeError{Reason: "checksum mismatch"}
	}

	raw, err := encoding.DecodeString(body)
	if err != nil {
		return nil, &MalformedCodeError{Reason: "body is not base64url"}
	}
	var wire wireBody
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, &MalformedCodeError{Reason: "body is not valid json"}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedCodeError{Reason: "body has trailing data"}
	}
	if wire.TraderID == "" {
		return nil, &MalformedCodeError{Reason: "trader id is missing"}
	}
	traderID, err := uuid.Parse(wire.TraderID)
	if err != nil || traderID == uuid.Nil {
		return nil, &MalformedCodeError{Reason: "trader id is invalid"}
	}
	var marketID uuid.UUID
	if wire.MarketID != "" {
		if marketID, err = uuid.Parse(wire.MarketID); err != nil {
			return nil, &MalformedCodeError{Reason: "market id is invalid"}
		}
	}

	return &IdentityPayload{
		TraderID:     id.TraderID(traderID),
		MarketID:     id.MarketID(marketID),
		BusinessName: wire.BusinessName,
		IssuedAt:     time.Unix(wire.IssuedAt, 0).UTC(),
		SchemaTag:    SchemePrefix + version,
	}, nil
}

func checksum(body string) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE([]byte(body)))
}
