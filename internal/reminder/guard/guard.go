package guard

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/clock"
	"github.com/escolaris/finance/internal/config"
	"github.com/escolaris/finance/internal/reminder/domain"
)

// Guard is the per-debt dedupe rule: a debt that already got a sent
// reminder inside the trailing window is not messaged again. The window
// trails the injected clock, so tests steer it with a fake.
type Guard struct {
	repo   domain.Repository
	clock  clock.Clock
	window time.Duration
}

func New(repo domain.Repository, clk clock.Clock, cfg config.Config) *Guard {
	return &Guard{
		repo:   repo,
		clock:  clk,
		window: cfg.ReminderDedupeWindow,
	}
}

// ShouldSend reports whether the debt is clear to receive a reminder.
func (g *Guard) ShouldSend(ctx context.Context, db *gorm.DB, debtID snowflake.ID) (bool, error) {
	since := g.clock.Now().Add(-g.window)
	sent, err := g.repo.HasSentSince(ctx, db, debtID, since)
	if err != nil {
		return false, err
	}
	return !sent, nil
}
