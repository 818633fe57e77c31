package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/escolaris/finance/internal/reminder/domain"
)

// LogSender writes reminders to the application log. It is the default
// delivery channel until an email or SMS provider is wired in.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) domain.Sender {
	return &LogSender{log: log.Named("reminder.sender")}
}

func (s *LogSender) Send(ctx context.Context, msg domain.Message) error {
	s.log.Info("payment reminder",
		zap.Int64("debt_id", int64(msg.DebtID)),
		zap.Int64("student_id", int64(msg.StudentID)),
		zap.String("student", msg.StudentName),
		zap.String("concept", msg.Concept),
		zap.String("amount", msg.Amount),
		zap.String("total_due", msg.TotalDue),
		zap.Time("due_date", msg.DueDate),
		zap.Int("days_overdue", msg.DaysOverdue),
		zap.String("risk_tier", msg.RiskTier),
		zap.String("contact", msg.Contact),
		zap.String("address", msg.Address),
	)
	return nil
}
