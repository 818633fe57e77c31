package account

import (
	"github.com/shopspring/decimal"

	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
)

// Snapshot is the derived account position for one student. It is
// computed on demand and never persisted.
type Snapshot struct {
	TotalDebt        decimal.Decimal `json:"total_debt"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	Balance          decimal.Decimal `json:"balance"`
	PendingDebtTotal decimal.Decimal `json:"pending_debt_total"`
}

// ComputeSnapshot derives the account totals from all of a student's
// debts and payments. Ordering of the inputs does not matter and empty
// collections yield zero totals.
//
// Balance sign policy: while any non-paid debt exists the balance is
// the negative of the outstanding debt, so a surplus payment never
// visually cancels an unrelated open debt. Only once every debt is
// settled does the unapplied payment total surface as a credit.
//
// PendingDebtTotal excludes only fully paid debts: a partially paid
// debt still counts at its full original amount.
func ComputeSnapshot(debts []debtdomain.Debt, payments []paymentdomain.Payment) Snapshot {
	totalDebt := decimal.Zero
	pendingTotal := decimal.Zero
	hasOpenDebt := false

	for _, d := range debts {
		if d.Status.Settled() {
			continue
		}
		hasOpenDebt = true
		totalDebt = totalDebt.Add(d.Amount)
		pendingTotal = pendingTotal.Add(d.Amount)
	}

	totalPaid := decimal.Zero
	unapplied := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
		if !p.Linked() {
			unapplied = unapplied.Add(p.Amount)
		}
	}

	balance := unapplied
	if hasOpenDebt {
		balance = totalDebt.Neg()
	}

	return Snapshot{
		TotalDebt:        totalDebt,
		TotalPaid:        totalPaid,
		Balance:          balance,
		PendingDebtTotal: pendingTotal,
	}
}
