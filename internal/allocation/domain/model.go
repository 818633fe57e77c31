package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	debtdomain "github.com/escolaris/finance/internal/debt/domain"
)

// SkipReason tags why the engine left a record untouched. Invalid
// allocation states are explicit, auditable outcomes rather than
// silent fallthroughs.
type SkipReason string

const (
	SkipPaymentAlreadyLinked SkipReason = "payment_already_linked"
	SkipDebtAlreadyPaid      SkipReason = "debt_already_paid"
	SkipStaleDebtStatus      SkipReason = "stale_debt_status"
)

// Allocation records one payment applied to one debt during a run.
type Allocation struct {
	PaymentID  snowflake.ID          `json:"payment_id"`
	DebtID     snowflake.ID          `json:"debt_id"`
	Amount     decimal.Decimal       `json:"amount"`
	DebtStatus debtdomain.DebtStatus `json:"debt_status"`
}

// Skip records one payment or debt the engine deliberately passed over.
type Skip struct {
	PaymentID snowflake.ID `json:"payment_id,omitempty"`
	DebtID    snowflake.ID `json:"debt_id,omitempty"`
	Reason    SkipReason   `json:"reason"`
}

// Result summarizes a single allocation run. Per-record persistence
// failures are counted and logged; they never abort the run.
type Result struct {
	StudentID snowflake.ID `json:"student_id"`
	Applied   []Allocation `json:"applied"`
	Skipped   []Skip       `json:"skipped"`
	Errors    int          `json:"errors"`
}

type Service interface {
	// Run matches the student's unlinked payments to outstanding debts
	// oldest-first. Re-running with no new records is a no-op.
	Run(ctx context.Context, studentID snowflake.ID) (Result, error)
}

var (
	ErrInvalidStudent = errors.New("invalid_student")
	ErrRunInProgress  = errors.New("allocation_run_in_progress")
)
