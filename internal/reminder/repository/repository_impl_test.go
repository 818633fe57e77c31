package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/reminder/domain"
	"github.com/escolaris/finance/internal/reminder/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:notifdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`CREATE TABLE notification_logs (
			id BIGINT PRIMARY KEY,
			debt_id BIGINT NOT NULL,
			student_id BIGINT NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT,
			detail TEXT,
			sent_at TIMESTAMP NOT NULL
		)`,
	).Error)

	return db
}

func TestListByDebt(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.Provide()
	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	ctx := context.Background()

	debtID := node.Generate()
	otherDebtID := node.Generate()
	studentID := node.Generate()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []domain.NotificationLog{
		{ID: node.Generate(), DebtID: debtID, StudentID: studentID, Outcome: domain.OutcomeFailed, Reason: "smtp_timeout", SentAt: base.Add(48 * time.Hour)},
		{ID: node.Generate(), DebtID: debtID, StudentID: studentID, Outcome: domain.OutcomeSent, SentAt: base},
		{ID: node.Generate(), DebtID: otherDebtID, StudentID: studentID, Outcome: domain.OutcomeSent, SentAt: base.Add(time.Hour)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, db, &entries[i]))
	}

	logs, err := repo.ListByDebt(ctx, db, debtID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// oldest first, other debts excluded
	assert.Equal(t, domain.OutcomeSent, logs[0].Outcome)
	assert.Equal(t, domain.OutcomeFailed, logs[1].Outcome)
	assert.Equal(t, "smtp_timeout", logs[1].Reason)
	for _, l := range logs {
		assert.Equal(t, debtID, l.DebtID)
	}
}

func TestListByDebtEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.Provide()
	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	logs, err := repo.ListByDebt(context.Background(), db, node.Generate())
	require.NoError(t, err)
	assert.Empty(t, logs)
}
