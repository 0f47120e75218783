// Package normalize canonicalizes the two values reconciliation joins on:
// monetary amounts and transaction references.
//
// Amount standardization is the single most consequential step in the
// pipeline. Source systems disagree about precision: one side computes
// 10.007 and displays 10.01, the other records 10.01. Compared naively
// they mismatch. Standardizing both sides to the same precision before
// comparison removes that entire failure class.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the fractional-digit count used for currency amounts.
const DefaultPrecision int32 = 2

// ParseAmount parses a textual amount into an exact decimal. Parsing goes
// through the text form, never a binary float, so values like "10.005"
// stay exact. Returns ok=false for blank or non-numeric text.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// StandardizeDecimal rounds d to the given number of fractional digits
// using round-half-away-from-zero (10.005 -> 10.01, not banker's
// rounding). Nil in, nil out.
func StandardizeDecimal(d *decimal.Decimal, precision int32) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(precision)
	return &r
}

// StandardizeString parses and standardizes a textual amount in one step.
// Blank or unparseable text yields nil.
func StandardizeString(s string, precision int32) *decimal.Decimal {
	d, ok := ParseAmount(s)
	if !ok {
		return nil
	}
	return StandardizeDecimal(&d, precision)
}

// AmountsMatch reports whether two amounts match within an absolute
// tolerance after standardization at the given precision. Two nil amounts
// match; a nil amount never matches a non-nil one.
func AmountsMatch(a, b *decimal.Decimal, precision int32, tolerance decimal.Decimal) bool {
	sa := StandardizeDecimal(a, precision)
	sb := StandardizeDecimal(b, precision)

	if sa == nil || sb == nil {
		return sa == nil && sb == nil
	}

	return sa.Sub(*sb).Abs().Cmp(tolerance) <= 0
}
