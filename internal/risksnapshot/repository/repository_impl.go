package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/risksnapshot/domain"
	pkgdb "github.com/escolaris/finance/pkg/db"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert writes the snapshot and reports whether a row was created.
// The unique period index turns a concurrent or repeated write into a
// duplicate-key error, which is the lost-race signal on every dialect.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, snap *domain.RiskSnapshot) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO risk_snapshots (id, student_id, month, year, tier, total_debt, total_paid, overdue_count, on_time_payments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID,
		snap.StudentID,
		snap.Month,
		snap.Year,
		snap.Tier,
		snap.TotalDebt,
		snap.TotalPaid,
		snap.OverdueCount,
		snap.OnTimePayments,
		snap.CreatedAt,
	)
	if pkgdb.IsDuplicateKeyErr(res.Error) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, studentID snowflake.ID, month, year int) (*domain.RiskSnapshot, error) {
	var item domain.RiskSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, month, year, tier, total_debt, total_paid, overdue_count, on_time_payments, created_at
		 FROM risk_snapshots
		 WHERE student_id = ? AND month = ? AND year = ?
		 LIMIT 1`,
		studentID,
		month,
		year,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.RiskSnapshot, error) {
	var items []domain.RiskSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, month, year, tier, total_debt, total_paid, overdue_count, on_time_payments, created_at
		 FROM risk_snapshots
		 WHERE student_id = ?
		 ORDER BY year, month`,
		studentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
