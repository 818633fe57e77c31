package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the funds were received.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// PaymentStatus is derived from the method at creation time: cash and
// card settle immediately, wire transfers wait for manual confirmation.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

func StatusForMethod(method PaymentMethod) PaymentStatus {
	switch method {
	case MethodCash, MethodCard:
		return PaymentStatusConfirmed
	default:
		return PaymentStatusPending
	}
}

// Payment records a transfer of funds from a student's account. The
// debt link is populated by the allocation engine and is write-once
// from the engine's perspective; the amount is immutable after creation.
type Payment struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	StudentID snowflake.ID    `json:"student_id" gorm:"not null;index"`
	ConceptID snowflake.ID    `json:"concept_id" gorm:"not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaidAt    time.Time       `json:"paid_at" gorm:"not null"`
	Method    PaymentMethod   `json:"method" gorm:"type:text;not null"`
	Status    PaymentStatus   `json:"status" gorm:"type:text;not null"`
	DebtID    *snowflake.ID   `json:"debt_id" gorm:"index"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

// Linked reports whether the payment already settles a specific debt.
func (p Payment) Linked() bool {
	return p.DebtID != nil && *p.DebtID != 0
}
