package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	allocationdomain "github.com/escolaris/finance/internal/allocation/domain"
	"github.com/escolaris/finance/internal/clock"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	debtrepo "github.com/escolaris/finance/internal/debt/repository"
	"github.com/escolaris/finance/internal/lock"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	paymentrepo "github.com/escolaris/finance/internal/payment/repository"
)

// Exercises the write conflicts a concurrent allocation run can hit
// between loading a record and persisting the match.

type conflictFixture struct {
	db   *gorm.DB
	svc  *Service
	node *snowflake.Node
}

func newConflictFixture(t *testing.T) *conflictFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:confdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE debts (
			id BIGINT PRIMARY KEY,
			student_id BIGINT NOT NULL,
			concept_id BIGINT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			due_date TIMESTAMP NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE payments (
			id BIGINT PRIMARY KEY,
			student_id BIGINT NOT NULL,
			concept_id BIGINT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			paid_at TIMESTAMP NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			debt_id BIGINT,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		DebtRepo:    debtrepo.Provide(),
		PaymentRepo: paymentrepo.Provide(),
		Locks:       lock.NewKeyedMutex(),
	}).(*Service)

	return &conflictFixture{db: db, svc: svc, node: node}
}

func (f *conflictFixture) addDebt(t *testing.T, status debtdomain.DebtStatus) debtdomain.Debt {
	t.Helper()

	debt := debtdomain.Debt{
		ID:        f.node.Generate(),
		StudentID: f.node.Generate(),
		ConceptID: f.node.Generate(),
		Amount:    decimal.NewFromInt(100),
		DueDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:    status,
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.db.Exec(
		`INSERT INTO debts (id, student_id, concept_id, amount, due_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		debt.ID, debt.StudentID, debt.ConceptID, debt.Amount, debt.DueDate, debt.Status, debt.CreatedAt,
	).Error)
	return debt
}

func (f *conflictFixture) addPayment(t *testing.T, amount int64, linkedTo *snowflake.ID) paymentdomain.Payment {
	t.Helper()

	payment := paymentdomain.Payment{
		ID:     f.node.Generate(),
		Amount: decimal.NewFromInt(amount),
	}
	require.NoError(t, f.db.Exec(
		`INSERT INTO payments (id, student_id, concept_id, amount, paid_at, method, status, debt_id, created_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, 'cash', 'confirmed', ?, CURRENT_TIMESTAMP)`,
		payment.ID, f.node.Generate(), f.node.Generate(), payment.Amount, linkedTo,
	).Error)
	return payment
}

func (f *conflictFixture) paymentLink(t *testing.T, id snowflake.ID) *int64 {
	t.Helper()

	var link *int64
	require.NoError(t, f.db.Raw(`SELECT debt_id FROM payments WHERE id = ?`, id).Scan(&link).Error)
	return link
}

func TestSettleSkipsPaymentClaimedElsewhere(t *testing.T) {
	f := newConflictFixture(t)
	debt := f.addDebt(t, debtdomain.DebtStatusPending)
	other := f.node.Generate()
	payment := f.addPayment(t, 100, &other)

	// the in-memory payment predates the competing link
	applied, skip, err := f.svc.settle(context.Background(), debt, payment)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, allocationdomain.SkipPaymentAlreadyLinked, skip)

	var status string
	require.NoError(t, f.db.Raw(`SELECT status FROM debts WHERE id = ?`, debt.ID).Scan(&status).Error)
	assert.Equal(t, string(debtdomain.DebtStatusPending), status)
}

func TestSettleSkipsStaleDebtStatus(t *testing.T) {
	f := newConflictFixture(t)
	debt := f.addDebt(t, debtdomain.DebtStatusPaid)
	debt.Status = debtdomain.DebtStatusPending
	payment := f.addPayment(t, 100, nil)

	applied, skip, err := f.svc.settle(context.Background(), debt, payment)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, allocationdomain.SkipStaleDebtStatus, skip)

	// the rollback must undo the link
	assert.Nil(t, f.paymentLink(t, payment.ID))
}

func TestApplyPartialSkipsStaleDebtStatus(t *testing.T) {
	f := newConflictFixture(t)
	debt := f.addDebt(t, debtdomain.DebtStatusPaid)
	debt.Status = debtdomain.DebtStatusPending
	payment := f.addPayment(t, 40, nil)

	applied, skip, err := f.svc.applyPartial(context.Background(), debt, payment)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, allocationdomain.SkipStaleDebtStatus, skip)
	assert.Nil(t, f.paymentLink(t, payment.ID))
}

func TestApplyPartialSkipsPaymentClaimedElsewhere(t *testing.T) {
	f := newConflictFixture(t)
	debt := f.addDebt(t, debtdomain.DebtStatusPending)
	other := f.node.Generate()
	payment := f.addPayment(t, 40, &other)

	applied, skip, err := f.svc.applyPartial(context.Background(), debt, payment)
	require.NoError(t, err)
	assert.Nil(t, applied)
	assert.Equal(t, allocationdomain.SkipPaymentAlreadyLinked, skip)
}
