// Package core holds the transaction domain model, the ingestion
// normalizer, and the pure aggregation functions behind the dashboard.
//
// This file handles parsing monetary amounts from untrusted text and
// formatting cents back for display.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents converts a decimal string to positive cents.
//
// It accepts both dot (12.34) and comma (12,34) separators and rounds
// half-up on the third decimal place. Explicitly signed input, zero, and
// anything that is not a finite number are rejected: every entry surface
// supplies a magnitude, never a sign.
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}
	v := cents.IntPart()
	if v <= 0 || v > math.MaxInt64/100 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// String renders the amount with two decimal places, e.g. "750.00" or
// "-25.50". Used in bot replies and API payloads.
func (m Money) String() string {
	return decimal.NewFromInt(m.Cents).Shift(-2).StringFixed(2)
}
