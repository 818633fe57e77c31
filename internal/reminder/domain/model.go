package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outcome is the recorded disposition of one reminder attempt.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeFailed  Outcome = "failed"
	OutcomeOmitted Outcome = "omitted"
)

// OmitReason explains why a debt in the reminder window produced no
// message. Every omission is logged; none of them aborts the sweep.
type OmitReason string

const (
	OmitStudentMissing  OmitReason = "student_missing"
	OmitConceptMissing  OmitReason = "concept_missing"
	OmitNoContacts      OmitReason = "no_contacts"
	OmitNoUsableAddress OmitReason = "no_usable_address"
	OmitRecordError     OmitReason = "record_error"
)

// NotificationLog is the audit trail for the reminder sweep. The dedupe
// guard reads it back: a debt with a sent row inside the trailing window
// is not messaged again.
type NotificationLog struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	DebtID    snowflake.ID   `json:"debt_id" gorm:"not null;index:ix_notification_logs_debt_sent,priority:1"`
	StudentID snowflake.ID   `json:"student_id" gorm:"not null"`
	Outcome   Outcome        `json:"outcome" gorm:"type:text;not null;index:ix_notification_logs_debt_sent,priority:2"`
	Reason    string         `json:"reason,omitempty" gorm:"type:text"`
	Detail    datatypes.JSON `json:"detail,omitempty"`
	SentAt    time.Time      `json:"sent_at" gorm:"not null;index:ix_notification_logs_debt_sent,priority:3"`
}

func (NotificationLog) TableName() string { return "notification_logs" }

// Message is one rendered payment reminder addressed to a guardian.
type Message struct {
	DebtID      snowflake.ID `json:"debt_id"`
	StudentID   snowflake.ID `json:"student_id"`
	StudentName string       `json:"student_name"`
	Concept     string       `json:"concept"`
	Amount      string       `json:"amount"`
	TotalDue    string       `json:"total_due"`
	DueDate     time.Time    `json:"due_date"`
	DaysOverdue int          `json:"days_overdue"`
	RiskTier    string       `json:"risk_tier"`
	Address     string       `json:"address"`
	Contact     string       `json:"contact"`
}

// Sender delivers one reminder message over some channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Detail is one per-debt line in a sweep summary.
type Detail struct {
	DebtID  snowflake.ID `json:"debt_id"`
	Outcome Outcome      `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
}

// Summary totals one reminder sweep.
type Summary struct {
	Sent       int      `json:"sent"`
	Suppressed int      `json:"suppressed"`
	Omitted    int      `json:"omitted"`
	Errors     int      `json:"errors"`
	Details    []Detail `json:"details"`
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, log *NotificationLog) error
	// HasSentSince reports whether the debt already has a sent reminder
	// at or after the given instant.
	HasSentSince(ctx context.Context, db *gorm.DB, debtID snowflake.ID, since time.Time) (bool, error)
	ListByDebt(ctx context.Context, db *gorm.DB, debtID snowflake.ID) ([]NotificationLog, error)
}

type Service interface {
	// Sweep scans all debts near or past due and sends at most one
	// reminder per debt per dedupe window.
	Sweep(ctx context.Context) (Summary, error)
}

var (
	ErrSweepTooSoon = errors.New("sweep_too_soon")
)
