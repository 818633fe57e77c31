package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/clock"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	GenID       *snowflake.Node
	PaymentRepo paymentdomain.Repository
	StudentRepo studentdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	genID       *snowflake.Node
	paymentRepo paymentdomain.Repository
	studentRepo studentdomain.Repository
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payment.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		paymentRepo: p.PaymentRepo,
		studentRepo: p.StudentRepo,
	}
}

func (s *Service) Register(ctx context.Context, input paymentdomain.RegisterPaymentInput) (*paymentdomain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, paymentdomain.ErrInvalidAmount
	}
	switch input.Method {
	case paymentdomain.MethodCash, paymentdomain.MethodCard, paymentdomain.MethodTransfer:
	default:
		return nil, paymentdomain.ErrInvalidMethod
	}

	student, err := s.studentRepo.FindStudent(ctx, s.db, input.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, studentdomain.ErrStudentNotFound
	}

	now := s.clock.Now()
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	payment := paymentdomain.Payment{
		ID:        s.genID.Generate(),
		StudentID: input.StudentID,
		ConceptID: input.ConceptID,
		Amount:    input.Amount.Round(2),
		PaidAt:    paidAt,
		Method:    input.Method,
		Status:    paymentdomain.StatusForMethod(input.Method),
		CreatedAt: now,
	}
	if err := s.paymentRepo.Create(ctx, s.db, &payment); err != nil {
		return nil, err
	}

	s.log.Info("payment registered",
		zap.Int64("payment_id", int64(payment.ID)),
		zap.Int64("student_id", int64(payment.StudentID)),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("method", string(payment.Method)),
		zap.String("status", string(payment.Status)),
	)

	return &payment, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*paymentdomain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentdomain.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *Service) ListByStudent(ctx context.Context, studentID snowflake.ID) ([]paymentdomain.Payment, error) {
	return s.paymentRepo.ListByStudent(ctx, s.db, studentID)
}

func (s *Service) Confirm(ctx context.Context, id snowflake.ID) (*paymentdomain.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, paymentdomain.ErrPaymentNotFound
	}
	if payment.Status == paymentdomain.PaymentStatusConfirmed {
		return payment, nil
	}
	if _, err := s.paymentRepo.Confirm(ctx, s.db, id); err != nil {
		return nil, err
	}
	payment.Status = paymentdomain.PaymentStatusConfirmed
	return payment, nil
}
