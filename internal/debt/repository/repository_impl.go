package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/debt/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, debt *domain.Debt) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO debts (id, student_id, concept_id, amount, due_date, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		debt.ID,
		debt.StudentID,
		debt.ConceptID,
		debt.Amount,
		debt.DueDate,
		debt.Status,
		debt.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Debt, error) {
	var item domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, due_date, status, created_at
		 FROM debts
		 WHERE id = ? AND deleted_at IS NULL
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

func (r *repo) ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.Debt, error) {
	var items []domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, due_date, status, created_at
		 FROM debts
		 WHERE student_id = ? AND deleted_at IS NULL
		 ORDER BY created_at, id`,
		studentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListOutstandingByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.Debt, error) {
	var items []domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, due_date, status, created_at
		 FROM debts
		 WHERE student_id = ? AND status <> ? AND deleted_at IS NULL
		 ORDER BY created_at, id`,
		studentID,
		domain.DebtStatusPaid,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListDueForReminder(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.Debt, error) {
	var items []domain.Debt
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, concept_id, amount, due_date, status, created_at
		 FROM debts
		 WHERE status <> ? AND due_date <= ? AND deleted_at IS NULL
		 ORDER BY due_date, id`,
		domain.DebtStatusPaid,
		cutoff,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.DebtStatus) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, domain.ErrInvalidStatusTransition
	}
	res := db.WithContext(ctx).Exec(
		`UPDATE debts
		 SET status = ?
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		to,
		id,
		from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDelete marks the debt deleted. Debts are never removed physically;
// rows referenced by payments stay queryable through the link.
func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE debts
		 SET deleted_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		id,
	).Error
}

func (r *repo) CountLinkedPayments(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM payments WHERE debt_id = ?`,
		id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FindConcept(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Concept, error) {
	var item domain.Concept
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, created_at
		 FROM concepts
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
