package models

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"regexp"
	"time"
)

const referencePrefix = "LVY-"

var referencePattern = regexp.MustCompile(`^LVY-\d{8}-[A-Z2-7]{8}$`)

// NewTransactionReference returns LVY-<yyyyMMdd>-<8 base32 chars>. The date
// is taken from now in its own location. Five random bytes encode to exactly
// eight base32 characters.
func NewTransactionReference(now time.Time, random io.Reader) (string, error) {
	if random == nil {
		random = rand.Reader
	}
	var buf [5]byte
	if _, err := io.ReadFull(random, buf[:]); err != nil {
		return "", fmt.Errorf("generate transaction reference: %w", err)
	}
	return referencePrefix + now.Format("20060102") + "-" + base32.StdEncoding.EncodeToString(buf[:]), nil
}

// IsTransactionReference reports whether s has the reference format.
func IsTransactionReference(s string) bool {
	return referencePattern.MatchString(s)
}
