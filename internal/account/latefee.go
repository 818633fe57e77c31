package account

import (
	"time"

	"github.com/shopspring/decimal"

	debtdomain "github.com/escolaris/finance/internal/debt/domain"
)

// LateFeePolicy is the institution-level surcharge policy. It is
// supplied externally and read-only to the calculator.
type LateFeePolicy struct {
	Enabled          bool            `json:"enabled"`
	SurchargePercent decimal.Decimal `json:"surcharge_percent"`
}

// DefaultLateFeePolicy is used when no settings source provides one:
// surcharges disabled, percentage kept at the institutional default.
func DefaultLateFeePolicy() LateFeePolicy {
	return LateFeePolicy{
		Enabled:          false,
		SurchargePercent: decimal.NewFromInt(10),
	}
}

// FeeBreakdown is the surcharge-adjusted view of a single debt.
type FeeBreakdown struct {
	Principal decimal.Decimal `json:"principal"`
	Fee       decimal.Decimal `json:"fee"`
	Total     decimal.Decimal `json:"total"`
}

var oneHundred = decimal.NewFromInt(100)

// ApplyLateFee computes the surcharge for a debt. The fee is zero
// unless the policy is enabled, the debt is past due at the given
// instant, and the debt is not yet paid. Pure function of its inputs.
func ApplyLateFee(debt debtdomain.Debt, policy LateFeePolicy, now time.Time) FeeBreakdown {
	principal := debt.Amount
	fee := decimal.Zero

	if policy.Enabled && debt.DueDate.Before(now) && !debt.Status.Settled() {
		fee = principal.Mul(policy.SurchargePercent).Div(oneHundred).Round(2)
	}

	return FeeBreakdown{
		Principal: principal,
		Fee:       fee,
		Total:     principal.Add(fee),
	}
}
