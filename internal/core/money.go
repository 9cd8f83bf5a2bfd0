// Package core provides amount parsing and formatting utilities.
//
// Amounts are decimal values so that sums over many transactions stay exact
// for the values the user typed.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a non-negative decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Zero is allowed; negative values and anything that is not a plain number
// are rejected. Amounts that would change when stored as a float64 fail with
// ErrAmountPrecision.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-1")    -> 0, ErrNegativeAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("0.1234567890123456789") -> 0, ErrAmountPrecision
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	// decimal accepts exponents; a ledger amount never needs one
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ErrAmountPrecision wraps ErrInvalidAmount for values the REAL amount
// column cannot hold exactly.
var ErrAmountPrecision = fmt.Errorf("%w: too many significant digits", ErrInvalidAmount)

// ValidateAmount rejects negative amounts and amounts that do not survive a
// float64 round trip.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeAmount
	}
	if !decimal.NewFromFloat(d.InexactFloat64()).Equal(d) {
		return ErrAmountPrecision
	}
	return nil
}

// FormatAmount renders an amount with two decimals for display and export.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
