package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtStatus is the settlement state of a billable obligation.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPartial DebtStatus = "partial"
	DebtStatusPaid    DebtStatus = "paid"
)

// CanTransitionTo enforces the one-way status lifecycle:
// pending -> partial -> paid, or pending -> paid directly.
// A paid debt never regresses.
func (s DebtStatus) CanTransitionTo(next DebtStatus) bool {
	switch s {
	case DebtStatusPending:
		return next == DebtStatusPartial || next == DebtStatusPaid
	case DebtStatusPartial:
		return next == DebtStatusPaid
	default:
		return false
	}
}

func (s DebtStatus) Settled() bool { return s == DebtStatusPaid }

// Debt is one billable obligation owed by a student.
// Debts are mutated only by the allocation engine and are logically
// deleted, never physically, while payments reference them.
type Debt struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	StudentID snowflake.ID    `json:"student_id" gorm:"not null;index:ix_debts_student_status,priority:1"`
	ConceptID snowflake.ID    `json:"concept_id" gorm:"not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	DueDate   time.Time       `json:"due_date" gorm:"not null;index"`
	Status    DebtStatus      `json:"status" gorm:"type:text;not null;default:'pending';index:ix_debts_student_status,priority:2"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Debt) TableName() string { return "debts" }

// DaysOverdue reports how many whole days past due the debt is at the
// given instant. Negative values mean the debt is not yet due.
func (d Debt) DaysOverdue(now time.Time) int {
	return int(now.Truncate(24*time.Hour).Sub(d.DueDate.Truncate(24*time.Hour)) / (24 * time.Hour))
}

// Concept names what a debt or payment is for (tuition, materials, trips).
type Concept struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Concept) TableName() string { return "concepts" }
