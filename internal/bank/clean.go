package bank

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// CleanAmount strips everything but digits and dots from s and parses the rest.
// An empty result is zero, so "₹1,234.50 Cr" is 1234.50 and "  " is 0.
func CleanAmount(s string) (decimal.Decimal, error) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrUnparseableValue, s)
	}
	return d, nil
}

// amounts cleans the debit, credit and balance cells of one row
func amounts(debit, credit, balance string) (d, c, b decimal.Decimal, err error) {
	if d, err = CleanAmount(debit); err != nil {
		return
	}
	if c, err = CleanAmount(credit); err != nil {
		return
	}
	b, err = CleanAmount(balance)
	return
}

// parseDate parses s with layout after trimming surrounding whitespace
func parseDate(layout, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrUnparseableValue, s)
	}
	return t, nil
}
