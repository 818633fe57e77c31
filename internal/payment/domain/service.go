package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RegisterPaymentInput struct {
	StudentID snowflake.ID    `json:"student_id"`
	ConceptID snowflake.ID    `json:"concept_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    PaymentMethod   `json:"method"`
}

type Service interface {
	// Register records a received payment. The status is derived from
	// the method; the debt link is left for the allocation engine.
	Register(ctx context.Context, input RegisterPaymentInput) (*Payment, error)
	Get(ctx context.Context, id snowflake.ID) (*Payment, error)
	ListByStudent(ctx context.Context, studentID snowflake.ID) ([]Payment, error)
	// Confirm settles a pending transfer after manual verification.
	Confirm(ctx context.Context, id snowflake.ID) (*Payment, error)
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]Payment, error)
	// ListUnlinkedByStudent returns payments with no debt link ordered by
	// (paid_at, id) ascending, the order the allocation engine consumes.
	ListUnlinkedByStudent(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]Payment, error)
	// Link sets the debt reference on a payment. The update only matches
	// rows whose link is still empty, making the link write-once from the
	// engine's side; returns false when the payment was already linked.
	Link(ctx context.Context, db *gorm.DB, paymentID, debtID snowflake.ID) (bool, error)
	Confirm(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}

var (
	ErrPaymentNotFound      = errors.New("payment_not_found")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidMethod        = errors.New("invalid_method")
	ErrPaymentAlreadyLinked = errors.New("payment_already_linked")
)
