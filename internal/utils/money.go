package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney keeps consistent two-place formatting for currency fields.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// ParsePrice parses a non-negative price and rounds it to cents.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price must not be negative")
	}
	return d.Round(2), nil
}

// LineTotal is unit price times quantity, rounded to cents.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}
