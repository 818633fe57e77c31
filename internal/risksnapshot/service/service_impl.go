package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/account"
	"github.com/escolaris/finance/internal/clock"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	obsmetrics "github.com/escolaris/finance/internal/observability/metrics"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	snapshotdomain "github.com/escolaris/finance/internal/risksnapshot/domain"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	SnapshotRepo snapshotdomain.Repository
	StudentRepo  studentdomain.Repository
	DebtRepo     debtdomain.Repository
	PaymentRepo  paymentdomain.Repository
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	snapshotRepo snapshotdomain.Repository
	studentRepo  studentdomain.Repository
	debtRepo     debtdomain.Repository
	paymentRepo  paymentdomain.Repository
	obsMetrics   *obsmetrics.Metrics
}

func NewService(p Params) snapshotdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("risksnapshot.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		snapshotRepo: p.SnapshotRepo,
		studentRepo:  p.StudentRepo,
		debtRepo:     p.DebtRepo,
		paymentRepo:  p.PaymentRepo,
		obsMetrics:   p.ObsMetrics,
	}
}

// GenerateForPeriod computes the student's standing as of now and
// stores it under (student, month, year). The insert only succeeds for
// an unwritten period; a concurrent or repeated call gets the stored
// row back unchanged.
func (s *Service) GenerateForPeriod(ctx context.Context, studentID snowflake.ID, month, year int) (*snapshotdomain.RiskSnapshot, bool, error) {
	if studentID == 0 {
		return nil, false, snapshotdomain.ErrInvalidStudent
	}
	if month < 1 || month > 12 || year < 2000 {
		return nil, false, snapshotdomain.ErrInvalidPeriod
	}

	debts, err := s.debtRepo.ListByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, false, err
	}
	payments, err := s.paymentRepo.ListByStudent(ctx, s.db, studentID)
	if err != nil {
		return nil, false, err
	}

	now := s.clock.Now()
	totals := account.ComputeSnapshot(debts, payments)

	overdueCount := 0
	maxDaysOverdue := 0
	dueByID := make(map[snowflake.ID]debtdomain.Debt, len(debts))
	for _, d := range debts {
		dueByID[d.ID] = d
		if !d.Status.Settled() && d.DueDate.Before(now) {
			overdueCount++
			if days := d.DaysOverdue(now); days > maxDaysOverdue {
				maxDaysOverdue = days
			}
		}
	}

	onTime := 0
	for _, p := range payments {
		if !p.Linked() {
			continue
		}
		if debt, ok := dueByID[*p.DebtID]; ok && !p.PaidAt.After(debt.DueDate) {
			onTime++
		}
	}

	snap := snapshotdomain.RiskSnapshot{
		ID:             s.genID.Generate(),
		StudentID:      studentID,
		Month:          month,
		Year:           year,
		Tier:           string(account.ClassifyByDaysOverdue(maxDaysOverdue)),
		TotalDebt:      totals.TotalDebt,
		TotalPaid:      totals.TotalPaid,
		OverdueCount:   overdueCount,
		OnTimePayments: onTime,
		CreatedAt:      now,
	}

	created, err := s.snapshotRepo.Insert(ctx, s.db, &snap)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.obsMetrics.RecordSnapshotWrite("created")
		return &snap, true, nil
	}

	s.obsMetrics.RecordSnapshotWrite("exists")
	existing, err := s.snapshotRepo.FindByPeriod(ctx, s.db, studentID, month, year)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GenerateAll snapshots every active student for the period. A failing
// student is logged and counted; the batch keeps going.
func (s *Service) GenerateAll(ctx context.Context, month, year int) (snapshotdomain.BatchResult, error) {
	result := snapshotdomain.BatchResult{}
	if month < 1 || month > 12 || year < 2000 {
		return result, snapshotdomain.ErrInvalidPeriod
	}

	students, err := s.studentRepo.ListActiveStudents(ctx, s.db)
	if err != nil {
		return result, err
	}

	for _, student := range students {
		_, created, err := s.GenerateForPeriod(ctx, student.ID, month, year)
		if err != nil {
			s.log.Error("failed to generate risk snapshot",
				zap.Int64("student_id", int64(student.ID)),
				zap.Int("month", month),
				zap.Int("year", year),
				zap.Error(err),
			)
			result.Errors++
			continue
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
	}

	s.log.Info("risk snapshot batch finished",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("created", result.Created),
		zap.Int("existing", result.Existing),
		zap.Int("errors", result.Errors),
	)

	return result, nil
}
