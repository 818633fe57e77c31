package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateDebtInput struct {
	StudentID snowflake.ID    `json:"student_id"`
	ConceptID snowflake.ID    `json:"concept_id"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   time.Time       `json:"due_date"`
}

type Service interface {
	Create(ctx context.Context, input CreateDebtInput) (*Debt, error)
	Get(ctx context.Context, id snowflake.ID) (*Debt, error)
	ListByStudent(ctx context.Context, studentID snowflake.ID) ([]Debt, error)
	// Delete removes a debt logically. A debt with linked payments is
	// part of the settled ledger and cannot be deleted.
	Delete(ctx context.Context, id snowflake.ID) error
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, debt *Debt) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Debt, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]Debt, error)
	// ListOutstandingByStudent returns non-paid debts ordered by
	// (created_at, id) ascending, the total order the allocation
	// engine's FIFO rule requires.
	ListOutstandingByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]Debt, error)
	// ListDueForReminder returns non-paid debts with due_date <= cutoff
	// across all students.
	ListDueForReminder(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]Debt, error)
	// UpdateStatus moves a debt from one status to another. Returns false
	// when the row no longer matches the expected current status.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to DebtStatus) (bool, error)
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	CountLinkedPayments(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	FindConcept(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Concept, error)
}

var (
	ErrDebtNotFound            = errors.New("debt_not_found")
	ErrConceptNotFound         = errors.New("concept_not_found")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrDebtHasPayments         = errors.New("debt_has_payments")
)
