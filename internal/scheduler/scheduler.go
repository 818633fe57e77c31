package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/escolaris/finance/internal/clock"
	reminderdomain "github.com/escolaris/finance/internal/reminder/domain"
	snapshotdomain "github.com/escolaris/finance/internal/risksnapshot/domain"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	ReminderSvc reminderdomain.Service
	SnapshotSvc snapshotdomain.Service
	Config      Config `optional:"true"`
}

// Scheduler drives the periodic finance jobs: the reminder sweep and
// the monthly risk snapshot batch. Both jobs are idempotent, so an
// overlapping or repeated tick is harmless.
type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	reminderSvc reminderdomain.Service
	snapshotSvc snapshotdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.ReminderSvc == nil || p.SnapshotSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler"),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		reminderSvc: p.ReminderSvc,
		snapshotSvc: p.SnapshotSvc,
	}, nil
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	if !s.cfg.DisableSweep {
		err = errors.Join(err, s.reminderSweepJob(ctx))
	}
	if !s.cfg.DisableSnapshots {
		err = errors.Join(err, s.riskSnapshotJob(ctx))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) reminderSweepJob(ctx context.Context) error {
	summary, err := s.reminderSvc.Sweep(ctx)
	if errors.Is(err, reminderdomain.ErrSweepTooSoon) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reminder_sweep: %w", err)
	}
	s.log.Info("scheduled reminder sweep done",
		zap.Int("sent", summary.Sent),
		zap.Int("omitted", summary.Omitted),
		zap.Int("errors", summary.Errors),
	)
	return nil
}

// riskSnapshotJob snapshots the previous month once its snapshot day
// arrives. The write-once insert makes repeated runs on the same day
// report existing rows instead of duplicating them.
func (s *Scheduler) riskSnapshotJob(ctx context.Context) error {
	now := s.clock.Now()
	if now.Day() != s.cfg.SnapshotDay {
		return nil
	}

	period := now.AddDate(0, 0, -now.Day())
	result, err := s.snapshotSvc.GenerateAll(ctx, int(period.Month()), period.Year())
	if err != nil {
		return fmt.Errorf("risk_snapshots: %w", err)
	}
	if result.Created > 0 || result.Errors > 0 {
		s.log.Info("scheduled risk snapshots done",
			zap.Int("month", int(period.Month())),
			zap.Int("year", period.Year()),
			zap.Int("created", result.Created),
			zap.Int("existing", result.Existing),
			zap.Int("errors", result.Errors),
		)
	}
	return nil
}
