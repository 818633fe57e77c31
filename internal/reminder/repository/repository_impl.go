package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/reminder/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, log *domain.NotificationLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notification_logs (id, debt_id, student_id, outcome, reason, detail, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.DebtID,
		log.StudentID,
		log.Outcome,
		log.Reason,
		log.Detail,
		log.SentAt,
	).Error
}

func (r *repo) HasSentSince(ctx context.Context, db *gorm.DB, debtID snowflake.ID, since time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM notification_logs
		 WHERE debt_id = ? AND outcome = ? AND sent_at >= ?`,
		debtID,
		domain.OutcomeSent,
		since,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListByDebt(ctx context.Context, db *gorm.DB, debtID snowflake.ID) ([]domain.NotificationLog, error) {
	var items []domain.NotificationLog
	err := db.WithContext(ctx).Raw(
		`SELECT id, debt_id, student_id, outcome, reason, detail, sent_at
		 FROM notification_logs
		 WHERE debt_id = ?
		 ORDER BY sent_at, id`,
		debtID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
