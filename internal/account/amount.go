package account

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a text-encoded monetary amount. Malformed values
// yield zero and a false flag, so a handler can reject the input while
// a report can count the record as zero and continue.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}

// FormatAmount renders an amount with two-decimal precision for
// statements and messages.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
