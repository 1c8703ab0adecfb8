package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
)

// MaxAmount is the first amount too large for the NUMERIC(18, 2) column.
var MaxAmount = decimal.New(1, 16)

// ParseAmount parses a user-supplied amount into a positive decimal with at
// most two fractional digits. Both "10.50" and "10,50" are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	// A single comma is a decimal separator typed on a European keypad.
	if strings.Count(clean, ",") == 1 && !strings.Contains(clean, ".") {
		clean = strings.Replace(clean, ",", ".", 1)
	}

	if strings.ContainsAny(clean, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}

	if d.GreaterThanOrEqual(MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: must be less than %s", ErrInvalidAmount, MaxAmount)
	}

	if !d.Round(2).Equal(d) {
		return decimal.Zero, fmt.Errorf("%w: at most 2 decimal places allowed", ErrInvalidAmount)
	}

	return d.Round(2), nil
}

// Format renders an amount the way processors expect it: fixed two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NormalizeCurrency upper-cases an ISO 4217 code, falling back to def when empty.
func NormalizeCurrency(code, def string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		c = strings.ToUpper(strings.TrimSpace(def))
	}

	if len(c) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}

	return c, nil
}
