package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	allocationdomain "github.com/escolaris/finance/internal/allocation/domain"
	"github.com/escolaris/finance/internal/clock"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	"github.com/escolaris/finance/internal/lock"
	obsmetrics "github.com/escolaris/finance/internal/observability/metrics"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
)

const lockTTL = 30 * time.Second

// errStaleDebtStatus aborts an allocation transaction when the debt row
// no longer matches the status the run loaded. The rollback undoes the
// payment link and the record becomes a tagged skip.
var errStaleDebtStatus = errors.New("stale debt status")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	DebtRepo    debtdomain.Repository
	PaymentRepo paymentdomain.Repository
	Locks       *lock.KeyedMutex
	Locker      *lock.Locker        `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	debtRepo    debtdomain.Repository
	paymentRepo paymentdomain.Repository
	locks       *lock.KeyedMutex
	locker      *lock.Locker
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) allocationdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("allocation.service"),
		clock:       p.Clock,
		debtRepo:    p.DebtRepo,
		paymentRepo: p.PaymentRepo,
		locks:       p.Locks,
		locker:      p.Locker,
		obsMetrics:  p.ObsMetrics,
	}
}

// Run walks the student's unlinked payments and outstanding debts in
// parallel, oldest first on both sides, and persists each match before
// moving on. The run is serialized per student; a second concurrent
// request for the same student waits rather than interleaving.
func (s *Service) Run(ctx context.Context, studentID snowflake.ID) (allocationdomain.Result, error) {
	result := allocationdomain.Result{StudentID: studentID}
	if studentID == 0 {
		return result, allocationdomain.ErrInvalidStudent
	}

	s.locks.Lock(studentID)
	defer s.locks.Unlock(studentID)

	if s.locker != nil {
		key := fmt.Sprintf("allocation:student:%d", studentID)
		token, ok, err := s.locker.TryLock(ctx, key, lockTTL)
		if err != nil {
			s.log.Warn("distributed lock unavailable, proceeding with local lock only",
				zap.Int64("student_id", int64(studentID)),
				zap.Error(err),
			)
		} else if !ok {
			return result, allocationdomain.ErrRunInProgress
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("failed to release distributed lock", zap.Error(err))
				}
			}()
		}
	}

	started := s.clock.Now()
	debts, err := s.debtRepo.ListOutstandingByStudent(ctx, s.db, studentID)
	if err != nil {
		s.obsMetrics.RecordAllocationRun("error", s.clock.Now().Sub(started))
		return result, err
	}
	payments, err := s.paymentRepo.ListUnlinkedByStudent(ctx, s.db, studentID)
	if err != nil {
		s.obsMetrics.RecordAllocationRun("error", s.clock.Now().Sub(started))
		return result, err
	}

	di, pi := 0, 0
	for di < len(debts) && pi < len(payments) {
		debt := debts[di]
		payment := payments[pi]

		if payment.Linked() {
			result.Skipped = append(result.Skipped, allocationdomain.Skip{
				PaymentID: payment.ID,
				Reason:    allocationdomain.SkipPaymentAlreadyLinked,
			})
			s.obsMetrics.RecordAllocationOutcome("skipped")
			pi++
			continue
		}
		if debt.Status.Settled() {
			result.Skipped = append(result.Skipped, allocationdomain.Skip{
				DebtID: debt.ID,
				Reason: allocationdomain.SkipDebtAlreadyPaid,
			})
			s.obsMetrics.RecordAllocationOutcome("skipped")
			di++
			continue
		}

		if payment.Amount.GreaterThanOrEqual(debt.Amount) {
			applied, skip, err := s.settle(ctx, debt, payment)
			if err != nil {
				s.log.Error("failed to settle debt",
					zap.Int64("debt_id", int64(debt.ID)),
					zap.Int64("payment_id", int64(payment.ID)),
					zap.Error(err),
				)
				result.Errors++
				di++
				pi++
				continue
			}
			if applied == nil {
				result.Skipped = append(result.Skipped, allocationdomain.Skip{
					PaymentID: payment.ID,
					DebtID:    debt.ID,
					Reason:    skip,
				})
				s.obsMetrics.RecordAllocationOutcome("skipped")
			} else {
				result.Applied = append(result.Applied, *applied)
				s.obsMetrics.RecordAllocationOutcome("applied")
			}
			di++
			pi++
			continue
		}

		applied, skip, err := s.applyPartial(ctx, debt, payment)
		if err != nil {
			s.log.Error("failed to apply partial payment",
				zap.Int64("debt_id", int64(debt.ID)),
				zap.Int64("payment_id", int64(payment.ID)),
				zap.Error(err),
			)
			result.Errors++
			pi++
			continue
		}
		if applied == nil {
			result.Skipped = append(result.Skipped, allocationdomain.Skip{
				PaymentID: payment.ID,
				DebtID:    debt.ID,
				Reason:    skip,
			})
			s.obsMetrics.RecordAllocationOutcome("skipped")
		} else {
			result.Applied = append(result.Applied, *applied)
			s.obsMetrics.RecordAllocationOutcome("applied")
			debts[di].Status = debtdomain.DebtStatusPartial
		}
		pi++
	}

	status := "ok"
	if result.Errors > 0 {
		status = "partial_failure"
	}
	s.obsMetrics.RecordAllocationRun(status, s.clock.Now().Sub(started))

	s.log.Info("allocation run finished",
		zap.Int64("student_id", int64(studentID)),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", result.Errors),
	)

	return result, nil
}

// settle links the payment to the debt and marks the debt paid. The
// covering payment is consumed whole: any amount above the debt stays on
// this payment and is never carried into the next debt.
func (s *Service) settle(ctx context.Context, debt debtdomain.Debt, payment paymentdomain.Payment) (*allocationdomain.Allocation, allocationdomain.SkipReason, error) {
	var alloc *allocationdomain.Allocation
	var skip allocationdomain.SkipReason
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linked, err := s.paymentRepo.Link(ctx, tx, payment.ID, debt.ID)
		if err != nil {
			return err
		}
		if !linked {
			skip = allocationdomain.SkipPaymentAlreadyLinked
			return nil
		}
		moved, err := s.debtRepo.UpdateStatus(ctx, tx, debt.ID, debt.Status, debtdomain.DebtStatusPaid)
		if err != nil {
			return err
		}
		if !moved {
			return errStaleDebtStatus
		}
		alloc = &allocationdomain.Allocation{
			PaymentID:  payment.ID,
			DebtID:     debt.ID,
			Amount:     payment.Amount,
			DebtStatus: debtdomain.DebtStatusPaid,
		}
		return nil
	})
	if errors.Is(err, errStaleDebtStatus) {
		return nil, allocationdomain.SkipStaleDebtStatus, nil
	}
	return alloc, skip, err
}

// applyPartial links an under-covering payment to the debt and moves a
// pending debt to partial. A debt already partial keeps its status; the
// payment still attaches to it.
func (s *Service) applyPartial(ctx context.Context, debt debtdomain.Debt, payment paymentdomain.Payment) (*allocationdomain.Allocation, allocationdomain.SkipReason, error) {
	var alloc *allocationdomain.Allocation
	var skip allocationdomain.SkipReason
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		linked, err := s.paymentRepo.Link(ctx, tx, payment.ID, debt.ID)
		if err != nil {
			return err
		}
		if !linked {
			skip = allocationdomain.SkipPaymentAlreadyLinked
			return nil
		}
		if debt.Status == debtdomain.DebtStatusPending {
			moved, err := s.debtRepo.UpdateStatus(ctx, tx, debt.ID, debtdomain.DebtStatusPending, debtdomain.DebtStatusPartial)
			if err != nil {
				return err
			}
			if !moved {
				return errStaleDebtStatus
			}
		}
		alloc = &allocationdomain.Allocation{
			PaymentID:  payment.ID,
			DebtID:     debt.ID,
			Amount:     payment.Amount,
			DebtStatus: debtdomain.DebtStatusPartial,
		}
		return nil
	})
	if errors.Is(err, errStaleDebtStatus) {
		return nil, allocationdomain.SkipStaleDebtStatus, nil
	}
	return alloc, skip, err
}
