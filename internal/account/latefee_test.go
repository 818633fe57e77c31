package account_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/escolaris/finance/internal/account"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
)

func overdueDebt(amount string) debtdomain.Debt {
	return debtdomain.Debt{
		Amount:  decimal.RequireFromString(amount),
		DueDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:  debtdomain.DebtStatusPending,
	}
}

func TestApplyLateFeeDisabledPolicy(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	breakdown := account.ApplyLateFee(overdueDebt("1000.00"), account.DefaultLateFeePolicy(), now)

	assert.True(t, breakdown.Fee.IsZero())
	assert.Equal(t, "1000.00", breakdown.Total.StringFixed(2))
}

func TestApplyLateFeeOverdueDebt(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	policy := account.LateFeePolicy{
		Enabled:          true,
		SurchargePercent: decimal.NewFromInt(10),
	}

	breakdown := account.ApplyLateFee(overdueDebt("1000.00"), policy, now)

	assert.Equal(t, "1000.00", breakdown.Principal.StringFixed(2))
	assert.Equal(t, "100.00", breakdown.Fee.StringFixed(2))
	assert.Equal(t, "1100.00", breakdown.Total.StringFixed(2))
}

func TestApplyLateFeeNotYetDue(t *testing.T) {
	now := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	policy := account.LateFeePolicy{
		Enabled:          true,
		SurchargePercent: decimal.NewFromInt(10),
	}

	breakdown := account.ApplyLateFee(overdueDebt("1000.00"), policy, now)

	assert.True(t, breakdown.Fee.IsZero())
}

func TestApplyLateFeeSettledDebt(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	policy := account.LateFeePolicy{
		Enabled:          true,
		SurchargePercent: decimal.NewFromInt(10),
	}
	d := overdueDebt("1000.00")
	d.Status = debtdomain.DebtStatusPaid

	breakdown := account.ApplyLateFee(d, policy, now)

	assert.True(t, breakdown.Fee.IsZero())
	assert.Equal(t, "1000.00", breakdown.Total.StringFixed(2))
}

func TestApplyLateFeeRoundsToCents(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	policy := account.LateFeePolicy{
		Enabled:          true,
		SurchargePercent: decimal.RequireFromString("12.5"),
	}

	breakdown := account.ApplyLateFee(overdueDebt("333.33"), policy, now)

	assert.Equal(t, "41.67", breakdown.Fee.StringFixed(2))
	assert.Equal(t, "375.00", breakdown.Total.StringFixed(2))
}
