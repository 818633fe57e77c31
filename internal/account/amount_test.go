package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escolaris/finance/internal/account"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"100", "100.00", true},
		{"100.5", "100.50", true},
		{" 33.33 ", "33.33", true},
		{"", "0.00", false},
		{"abc", "0.00", false},
		{"1,000.00", "0.00", false},
	}

	for _, tc := range cases {
		parsed, ok := account.ParseAmount(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, account.FormatAmount(parsed), "raw=%q", tc.raw)
	}
}

func TestFormatAmountRoundTrip(t *testing.T) {
	parsed, ok := account.ParseAmount("1234.56")
	assert.True(t, ok)
	assert.Equal(t, "1234.56", account.FormatAmount(parsed))

	reparsed, ok := account.ParseAmount(account.FormatAmount(parsed))
	assert.True(t, ok)
	assert.True(t, parsed.Equal(reparsed))
}
