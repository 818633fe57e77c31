package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RiskSnapshot is the immutable monthly record of a student's payment
// standing. One row exists per student and period; regenerating a
// period returns the stored row untouched.
type RiskSnapshot struct {
	ID             snowflake.ID    `json:"id" gorm:"primaryKey"`
	StudentID      snowflake.ID    `json:"student_id" gorm:"not null;uniqueIndex:ux_risk_snapshots_period,priority:1"`
	Month          int             `json:"month" gorm:"not null;uniqueIndex:ux_risk_snapshots_period,priority:2"`
	Year           int             `json:"year" gorm:"not null;uniqueIndex:ux_risk_snapshots_period,priority:3"`
	Tier           string          `json:"tier" gorm:"type:text;not null"`
	TotalDebt      decimal.Decimal `json:"total_debt" gorm:"type:decimal(12,2);not null"`
	TotalPaid      decimal.Decimal `json:"total_paid" gorm:"type:decimal(12,2);not null"`
	OverdueCount   int             `json:"overdue_count" gorm:"not null"`
	OnTimePayments int             `json:"on_time_payments" gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (RiskSnapshot) TableName() string { return "risk_snapshots" }

// BatchResult totals one whole-roster generation run.
type BatchResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Errors   int `json:"errors"`
}

type Repository interface {
	// Insert writes a snapshot unless its period row already exists.
	// Returns false when the period was already written.
	Insert(ctx context.Context, db *gorm.DB, snap *RiskSnapshot) (bool, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, studentID snowflake.ID, month, year int) (*RiskSnapshot, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]RiskSnapshot, error)
}

type Service interface {
	// GenerateForPeriod computes and stores the student's snapshot for
	// the given month. The second return is false when the period had
	// already been written and the stored row is returned instead.
	GenerateForPeriod(ctx context.Context, studentID snowflake.ID, month, year int) (*RiskSnapshot, bool, error)
	// GenerateAll runs GenerateForPeriod for every active student.
	// Per-student failures are counted, not propagated.
	GenerateAll(ctx context.Context, month, year int) (BatchResult, error)
}

var (
	ErrInvalidPeriod  = errors.New("invalid_period")
	ErrInvalidStudent = errors.New("invalid_student")
)
