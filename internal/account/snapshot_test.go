package account_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/escolaris/finance/internal/account"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
)

func debt(id int64, amount string, status debtdomain.DebtStatus) debtdomain.Debt {
	return debtdomain.Debt{
		ID:      snowflake.ID(id),
		Amount:  decimal.RequireFromString(amount),
		DueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:  status,
	}
}

func payment(id int64, amount string, debtID *snowflake.ID) paymentdomain.Payment {
	return paymentdomain.Payment{
		ID:     snowflake.ID(id),
		Amount: decimal.RequireFromString(amount),
		DebtID: debtID,
	}
}

func link(id int64) *snowflake.ID {
	sid := snowflake.ID(id)
	return &sid
}

func TestComputeSnapshotEmpty(t *testing.T) {
	snap := account.ComputeSnapshot(nil, nil)

	assert.True(t, snap.TotalDebt.IsZero())
	assert.True(t, snap.TotalPaid.IsZero())
	assert.True(t, snap.Balance.IsZero())
	assert.True(t, snap.PendingDebtTotal.IsZero())
}

func TestComputeSnapshotSettledAccount(t *testing.T) {
	// a 500 debt fully covered by a linked 500 payment
	snap := account.ComputeSnapshot(
		[]debtdomain.Debt{debt(1, "500.00", debtdomain.DebtStatusPaid)},
		[]paymentdomain.Payment{payment(10, "500.00", link(1))},
	)

	assert.True(t, snap.TotalDebt.IsZero())
	assert.Equal(t, "500.00", snap.TotalPaid.StringFixed(2))
	assert.True(t, snap.Balance.IsZero())
	assert.True(t, snap.PendingDebtTotal.IsZero())
}

func TestComputeSnapshotPartialDebtCountsFullAmount(t *testing.T) {
	// an 800 debt partially covered by a linked 300 payment still
	// reports the full 800 as pending
	snap := account.ComputeSnapshot(
		[]debtdomain.Debt{debt(1, "800.00", debtdomain.DebtStatusPartial)},
		[]paymentdomain.Payment{payment(10, "300.00", link(1))},
	)

	assert.Equal(t, "800.00", snap.TotalDebt.StringFixed(2))
	assert.Equal(t, "300.00", snap.TotalPaid.StringFixed(2))
	assert.Equal(t, "-800.00", snap.Balance.StringFixed(2))
	assert.Equal(t, "800.00", snap.PendingDebtTotal.StringFixed(2))
}

func TestComputeSnapshotOpenDebtHidesCredit(t *testing.T) {
	// an unlinked payment never visually cancels an open debt
	snap := account.ComputeSnapshot(
		[]debtdomain.Debt{debt(1, "200.00", debtdomain.DebtStatusPending)},
		[]paymentdomain.Payment{payment(10, "900.00", nil)},
	)

	assert.Equal(t, "-200.00", snap.Balance.StringFixed(2))
}

func TestComputeSnapshotCreditWhenAllSettled(t *testing.T) {
	snap := account.ComputeSnapshot(
		[]debtdomain.Debt{debt(1, "500.00", debtdomain.DebtStatusPaid)},
		[]paymentdomain.Payment{
			payment(10, "500.00", link(1)),
			payment(11, "150.00", nil),
		},
	)

	assert.Equal(t, "150.00", snap.Balance.StringFixed(2))
	assert.Equal(t, "650.00", snap.TotalPaid.StringFixed(2))
}
