package service_test

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
	allocationservice "github.com/escolaris/finance/internal/allocation/service"
	"github.com/escolaris/finance/internal/clock"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	debtrepo "github.com/escolaris/finance/internal/debt/repository"
	"github.com/escolaris/finance/internal/lock"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	paymentrepo "github.com/escolaris/finance/internal/payment/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:allocdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	return db
}

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clk      *clock.FakeClock
	debts    debtdomain.Repository
	payments paymentdomain.Repository
	svc      allocationdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	debts := debtrepo.Provide()
	payments := paymentrepo.Provide()

	svc := allocationservice.NewService(allocationservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       clk,
		DebtRepo:    debts,
		PaymentRepo: payments,
		Locks:       lock.NewKeyedMutex(),
	})

	return &fixture{
		db:       db,
		node:     node,
		clk:      clk,
		debts:    debts,
		payments: payments,
		svc:      svc,
	}
}

func (f *fixture) addDebt(t *testing.T, studentID snowflake.ID, amount string, createdAt time.Time) snowflake.ID {
	t.Helper()

	debt := debtdomain.Debt{
		ID:        f.node.Generate(),
		StudentID: studentID,
		ConceptID: f.node.Generate(),
		Amount:    decimal.RequireFromString(amount),
		DueDate:   createdAt.AddDate(0, 1, 0),
		Status:    debtdomain.DebtStatusPending,
		CreatedAt: createdAt,
	}
	require.NoError(t, f.debts.Create(context.Background(), f.db, &debt))
	return debt.ID
}

func (f *fixture) addPayment(t *testing.T, studentID snowflake.ID, amount string, paidAt time.Time) snowflake.ID {
	t.Helper()

	payment := paymentdomain.Payment{
		ID:        f.node.Generate(),
		StudentID: studentID,
		ConceptID: f.node.Generate(),
		Amount:    decimal.RequireFromString(amount),
		PaidAt:    paidAt,
		Method:    paymentdomain.MethodCash,
		Status:    paymentdomain.PaymentStatusConfirmed,
		CreatedAt: paidAt,
	}
	require.NoError(t, f.payments.Create(context.Background(), f.db, &payment))
	return payment.ID
}

func (f *fixture) debtStatus(t *testing.T, id snowflake.ID) debtdomain.DebtStatus {
	t.Helper()

	debt, err := f.debts.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, debt)
	return debt.Status
}

func (f *fixture) paymentLink(t *testing.T, id snowflake.ID) *snowflake.ID {
	t.Helper()

	payment, err := f.payments.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, payment)
	return payment.DebtID
}

func TestRunFullCoverage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	debtID := f.addDebt(t, studentID, "500.00", base)
	paymentID := f.addPayment(t, studentID, "500.00", base.AddDate(0, 0, 5))

	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Empty(t, result.Skipped)
	assert.Zero(t, result.Errors)
	assert.Equal(t, debtID, result.Applied[0].DebtID)
	assert.Equal(t, paymentID, result.Applied[0].PaymentID)
	assert.Equal(t, debtdomain.DebtStatusPaid, result.Applied[0].DebtStatus)

	assert.Equal(t, debtdomain.DebtStatusPaid, f.debtStatus(t, debtID))
	link := f.paymentLink(t, paymentID)
	require.NotNil(t, link)
	assert.Equal(t, debtID, *link)
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	f.addDebt(t, studentID, "500.00", base)
	f.addPayment(t, studentID, "500.00", base)

	first, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, first.Applied, 1)

	second, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	assert.Empty(t, second.Skipped)
	assert.Zero(t, second.Errors)
}

func TestRunPartialCoverage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	debtID := f.addDebt(t, studentID, "800.00", base)
	paymentID := f.addPayment(t, studentID, "300.00", base)

	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, debtdomain.DebtStatusPartial, result.Applied[0].DebtStatus)

	assert.Equal(t, debtdomain.DebtStatusPartial, f.debtStatus(t, debtID))
	link := f.paymentLink(t, paymentID)
	require.NotNil(t, link)
	assert.Equal(t, debtID, *link)
}

func TestRunPartialThenSettle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	debtID := f.addDebt(t, studentID, "800.00", base)
	f.addPayment(t, studentID, "300.00", base)
	f.addPayment(t, studentID, "800.00", base.AddDate(0, 0, 3))

	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	assert.Equal(t, debtdomain.DebtStatusPartial, result.Applied[0].DebtStatus)
	assert.Equal(t, debtdomain.DebtStatusPaid, result.Applied[1].DebtStatus)
	assert.Equal(t, debtdomain.DebtStatusPaid, f.debtStatus(t, debtID))
}

func TestRunSurplusNotCarried(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	oldDebtID := f.addDebt(t, studentID, "500.00", base)
	newDebtID := f.addDebt(t, studentID, "200.00", base.AddDate(0, 0, 1))
	paymentID := f.addPayment(t, studentID, "800.00", base)

	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, oldDebtID, result.Applied[0].DebtID)
	assert.Equal(t, paymentID, result.Applied[0].PaymentID)

	assert.Equal(t, debtdomain.DebtStatusPaid, f.debtStatus(t, oldDebtID))
	assert.Equal(t, debtdomain.DebtStatusPending, f.debtStatus(t, newDebtID))
}

func TestRunMatchesOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -2, 0)

	firstDebtID := f.addDebt(t, studentID, "100.00", base)
	secondDebtID := f.addDebt(t, studentID, "200.00", base.AddDate(0, 0, 10))
	firstPaymentID := f.addPayment(t, studentID, "100.00", base.AddDate(0, 1, 0))
	secondPaymentID := f.addPayment(t, studentID, "200.00", base.AddDate(0, 1, 1))

	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)
	assert.Equal(t, firstDebtID, result.Applied[0].DebtID)
	assert.Equal(t, firstPaymentID, result.Applied[0].PaymentID)
	assert.Equal(t, secondDebtID, result.Applied[1].DebtID)
	assert.Equal(t, secondPaymentID, result.Applied[1].PaymentID)
}

func TestRunPaidDebtNeverRegresses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	studentID := f.node.Generate()
	base := f.clk.Now().AddDate(0, -1, 0)

	debtID := f.addDebt(t, studentID, "500.00", base)
	f.addPayment(t, studentID, "500.00", base)

	_, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, debtdomain.DebtStatusPaid, f.debtStatus(t, debtID))

	// a later payment must not touch the settled debt
	latePaymentID := f.addPayment(t, studentID, "500.00", base.AddDate(0, 0, 20))
	result, err := f.svc.Run(ctx, studentID)
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Equal(t, debtdomain.DebtStatusPaid, f.debtStatus(t, debtID))
	assert.Nil(t, f.paymentLink(t, latePaymentID))
}

func TestRunInvalidStudent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Run(context.Background(), 0)
	require.ErrorIs(t, err, allocationdomain.ErrInvalidStudent)
}
