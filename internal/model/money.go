package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Amount errors.
var (
	ErrInvalidAmount   = errors.New("amount must be a number")
	ErrAmountTooLarge  = errors.New("amount is too large")
	ErrAmountPrecision = errors.New("amount has more digits than can be stored")
)

// MaxAmount is the largest amount a single expense may carry.
var MaxAmount = decimal.New(1, 12)

// ParseAmount parses a non-negative decimal amount.
//
// Both "12.34" and "12,34" are accepted. Amounts keep the precision they
// were written with; rounding to two places only happens on display.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	// A lone comma is the decimal separator.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeAmount, s)
	}
	if err := CheckStorable(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckStorable reports whether d can be written to the ledger and read
// back unchanged. Amounts are stored as 64-bit floats, so anything above
// MaxAmount or with more significant digits than a float64 holds is
// rejected rather than silently rounded.
func CheckStorable(d decimal.Decimal) error {
	if d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s exceeds %s", ErrAmountTooLarge, d.String(), MaxAmount.String())
	}
	if !decimal.NewFromFloat(d.InexactFloat64()).Equal(d) {
		return fmt.Errorf("%w: %s", ErrAmountPrecision, d.String())
	}
	return nil
}

// FormatAmount renders an amount with exactly two decimals, as used in CSV.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// DisplayAmount renders an amount for humans, e.g. "$1,234.50".
func DisplayAmount(d decimal.Decimal) string {
	return "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}
