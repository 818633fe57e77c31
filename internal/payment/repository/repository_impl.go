package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/payment/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, student_id, concept_id, amount, paid_at, method, status, debt_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.StudentID,
		payment.ConceptID,
		payment.Amount,
		payment.PaidAt,
		payment.Method,
		payment.Status,
		payment.DebtID,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var item domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, paid_at, method, status, debt_id, created_at
		 FROM payments
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, paid_at, method, status, debt_id, created_at
		 FROM payments
		 WHERE student_id = ?
		 ORDER BY paid_at, id`,
		studentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListUnlinkedByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, paid_at, method, status, debt_id, created_at
		 FROM payments
		 WHERE student_id = ? AND debt_id IS NULL
		 ORDER BY paid_at, id`,
		studentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Link(ctx context.Context, db *gorm.DB, paymentID, debtID snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET debt_id = ?
		 WHERE id = ? AND debt_id IS NULL`,
		debtID,
		paymentID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE payments
		 SET status = ?
		 WHERE id = ? AND status = ?`,
		domain.PaymentStatusConfirmed,
		id,
		domain.PaymentStatusPending,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
