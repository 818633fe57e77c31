package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/clock"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	DebtRepo    debtdomain.Repository
	StudentRepo studentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	debtRepo    debtdomain.Repository
	studentRepo studentdomain.Repository
}

func NewService(p Params) debtdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("debt.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		debtRepo:    p.DebtRepo,
		studentRepo: p.StudentRepo,
	}
}

func (s *Service) Create(ctx context.Context, input debtdomain.CreateDebtInput) (*debtdomain.Debt, error) {
	if !input.Amount.IsPositive() {
		return nil, debtdomain.ErrInvalidAmount
	}

	student, err := s.studentRepo.FindStudent(ctx, s.db, input.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, studentdomain.ErrStudentNotFound
	}

	concept, err := s.debtRepo.FindConcept(ctx, s.db, input.ConceptID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, debtdomain.ErrConceptNotFound
	}

	debt := debtdomain.Debt{
		ID:        s.genID.Generate(),
		StudentID: input.StudentID,
		ConceptID: input.ConceptID,
		Amount:    input.Amount.Round(2),
		DueDate:   input.DueDate,
		Status:    debtdomain.DebtStatusPending,
		CreatedAt: s.clock.Now(),
	}
	if err := s.debtRepo.Create(ctx, s.db, &debt); err != nil {
		return nil, err
	}

	s.log.Info("debt created",
		zap.Int64("debt_id", int64(debt.ID)),
		zap.Int64("student_id", int64(debt.StudentID)),
		zap.String("amount", debt.Amount.StringFixed(2)),
	)

	return &debt, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*debtdomain.Debt, error) {
	debt, err := s.debtRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, debtdomain.ErrDebtNotFound
	}
	return debt, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID snowflake.ID) ([]debtdomain.Debt, error) {
	return s.debtRepo.ListByStudent(ctx, s.db, studentID)
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	debt, err := s.debtRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if debt == nil {
		return debtdomain.ErrDebtNotFound
	}
	linked, err := s.debtRepo.CountLinkedPayments(ctx, s.db, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return debtdomain.ErrDebtHasPayments
	}
	if err := s.debtRepo.SoftDelete(ctx, s.db, id); err != nil {
		return err
	}
	s.log.Info("debt deleted", zap.Int64("debt_id", int64(id)))
	return nil
}
