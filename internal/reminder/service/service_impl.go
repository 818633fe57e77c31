package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/account"
	"github.com/escolaris/finance/internal/clock"
	"github.com/escolaris/finance/internal/config"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	obsmetrics "github.com/escolaris/finance/internal/observability/metrics"
	reminderdomain "github.com/escolaris/finance/internal/reminder/domain"
	reminderguard "github.com/escolaris/finance/internal/reminder/guard"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Clock        clock.Clock
	GenID        *snowflake.Node
	Tracker      *SweepTracker
	Guard        *reminderguard.Guard
	DebtRepo     debtdomain.Repository
	StudentRepo  studentdomain.Repository
	ReminderRepo reminderdomain.Repository
	Sender       reminderdomain.Sender
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	clock        clock.Clock
	genID        *snowflake.Node
	tracker      *SweepTracker
	guard        *reminderguard.Guard
	debtRepo     debtdomain.Repository
	studentRepo  studentdomain.Repository
	reminderRepo reminderdomain.Repository
	sender       reminderdomain.Sender
	obsMetrics   *obsmetrics.Metrics
}

func NewService(p Params) reminderdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reminder.service"),
		cfg:          p.Cfg,
		clock:        p.Clock,
		genID:        p.GenID,
		tracker:      p.Tracker,
		guard:        p.Guard,
		debtRepo:     p.DebtRepo,
		studentRepo:  p.StudentRepo,
		reminderRepo: p.ReminderRepo,
		sender:       p.Sender,
		obsMetrics:   p.ObsMetrics,
	}
}

// Sweep scans every debt that is overdue or inside the upcoming-due
// window and sends at most one reminder per debt per dedupe window.
// Broken records are logged and skipped; the sweep never aborts on a
// single bad row.
func (s *Service) Sweep(ctx context.Context) (reminderdomain.Summary, error) {
	now := s.clock.Now()
	if !s.tracker.TryStart(now, s.cfg.ReminderSweepMinGap) {
		return reminderdomain.Summary{}, reminderdomain.ErrSweepTooSoon
	}
	defer func() { s.tracker.Finish(s.clock.Now()) }()

	summary := reminderdomain.Summary{}
	cutoff := now.AddDate(0, 0, s.cfg.ReminderWindowDays)
	debts, err := s.debtRepo.ListDueForReminder(ctx, s.db, cutoff)
	if err != nil {
		return summary, err
	}

	for _, debt := range debts {
		s.processDebt(ctx, debt, now, &summary)
	}

	s.log.Info("reminder sweep finished",
		zap.Int("scanned", len(debts)),
		zap.Int("sent", summary.Sent),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int("omitted", summary.Omitted),
		zap.Int("errors", summary.Errors),
	)

	return summary, nil
}

func (s *Service) processDebt(ctx context.Context, debt debtdomain.Debt, now time.Time, summary *reminderdomain.Summary) {
	student, err := s.studentRepo.FindStudent(ctx, s.db, debt.StudentID)
	if err != nil {
		s.recordError(ctx, debt, summary, err)
		return
	}
	if student == nil {
		s.omit(ctx, debt, reminderdomain.OmitStudentMissing, summary)
		return
	}

	concept, err := s.debtRepo.FindConcept(ctx, s.db, debt.ConceptID)
	if err != nil {
		s.recordError(ctx, debt, summary, err)
		return
	}
	if concept == nil {
		s.omit(ctx, debt, reminderdomain.OmitConceptMissing, summary)
		return
	}

	contacts, err := s.studentRepo.ListContacts(ctx, s.db, debt.StudentID)
	if err != nil {
		s.recordError(ctx, debt, summary, err)
		return
	}
	if len(contacts) == 0 {
		s.omit(ctx, debt, reminderdomain.OmitNoContacts, summary)
		return
	}
	contact, ok := pickContact(contacts)
	if !ok {
		s.omit(ctx, debt, reminderdomain.OmitNoUsableAddress, summary)
		return
	}

	sendable, err := s.guard.ShouldSend(ctx, s.db, debt.ID)
	if err != nil {
		s.recordError(ctx, debt, summary, err)
		return
	}
	if !sendable {
		summary.Suppressed++
		summary.Details = append(summary.Details, reminderdomain.Detail{
			DebtID:  debt.ID,
			Outcome: reminderdomain.OutcomeOmitted,
			Reason:  "recently_notified",
		})
		s.obsMetrics.RecordReminderOutcome("suppressed")
		return
	}

	days := debt.DaysOverdue(now)
	policy := account.LateFeePolicy{
		Enabled:          s.cfg.LateFee.Enabled,
		SurchargePercent: s.cfg.LateFee.SurchargePercent,
	}
	breakdown := account.ApplyLateFee(debt, policy, now)

	msg := reminderdomain.Message{
		DebtID:      debt.ID,
		StudentID:   debt.StudentID,
		StudentName: student.FullName(),
		Concept:     concept.Name,
		Amount:      account.FormatAmount(breakdown.Principal),
		TotalDue:    account.FormatAmount(breakdown.Total),
		DueDate:     debt.DueDate,
		DaysOverdue: days,
		RiskTier:    string(account.ClassifyByDaysOverdue(days)),
		Address:     contactAddress(contact),
		Contact:     contact.FullName,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error("failed to send reminder",
			zap.Int64("debt_id", int64(debt.ID)),
			zap.Error(err),
		)
		s.writeLog(ctx, debt, reminderdomain.OutcomeFailed, err.Error(), msg, now)
		summary.Errors++
		summary.Details = append(summary.Details, reminderdomain.Detail{
			DebtID:  debt.ID,
			Outcome: reminderdomain.OutcomeFailed,
			Reason:  err.Error(),
		})
		s.obsMetrics.RecordReminderOutcome("failed")
		return
	}

	s.writeLog(ctx, debt, reminderdomain.OutcomeSent, "", msg, now)
	summary.Sent++
	summary.Details = append(summary.Details, reminderdomain.Detail{
		DebtID:  debt.ID,
		Outcome: reminderdomain.OutcomeSent,
	})
	s.obsMetrics.RecordReminderOutcome("sent")
}

func (s *Service) omit(ctx context.Context, debt debtdomain.Debt, reason reminderdomain.OmitReason, summary *reminderdomain.Summary) {
	s.log.Warn("reminder omitted",
		zap.Int64("debt_id", int64(debt.ID)),
		zap.Int64("student_id", int64(debt.StudentID)),
		zap.String("reason", string(reason)),
	)
	s.writeLog(ctx, debt, reminderdomain.OutcomeOmitted, string(reason), reminderdomain.Message{}, s.clock.Now())
	summary.Omitted++
	summary.Details = append(summary.Details, reminderdomain.Detail{
		DebtID:  debt.ID,
		Outcome: reminderdomain.OutcomeOmitted,
		Reason:  string(reason),
	})
	s.obsMetrics.RecordReminderOutcome("omitted")
}

func (s *Service) recordError(ctx context.Context, debt debtdomain.Debt, summary *reminderdomain.Summary, err error) {
	s.log.Error("reminder record error",
		zap.Int64("debt_id", int64(debt.ID)),
		zap.Error(err),
	)
	summary.Errors++
	summary.Details = append(summary.Details, reminderdomain.Detail{
		DebtID:  debt.ID,
		Outcome: reminderdomain.OutcomeOmitted,
		Reason:  string(reminderdomain.OmitRecordError),
	})
	s.obsMetrics.IncSweepError()
}

func (s *Service) writeLog(ctx context.Context, debt debtdomain.Debt, outcome reminderdomain.Outcome, reason string, msg reminderdomain.Message, now time.Time) {
	var detail datatypes.JSON
	if msg.DebtID != 0 {
		if b, err := json.Marshal(msg); err == nil {
			detail = datatypes.JSON(b)
		}
	}
	entry := reminderdomain.NotificationLog{
		ID:        s.genID.Generate(),
		DebtID:    debt.ID,
		StudentID: debt.StudentID,
		Outcome:   outcome,
		Reason:    reason,
		Detail:    detail,
		SentAt:    now,
	}
	if err := s.reminderRepo.Create(ctx, s.db, &entry); err != nil {
		s.log.Error("failed to write notification log",
			zap.Int64("debt_id", int64(debt.ID)),
			zap.Error(err),
		)
	}
}

// pickContact returns the first guardian with a usable address.
func pickContact(contacts []studentdomain.GuardianContact) (studentdomain.GuardianContact, bool) {
	for _, c := range contacts {
		if c.Reachable() {
			return c, true
		}
	}
	return studentdomain.GuardianContact{}, false
}

func contactAddress(c studentdomain.GuardianContact) string {
	if strings.TrimSpace(c.Email) != "" {
		return strings.TrimSpace(c.Email)
	}
	return strings.TrimSpace(c.Phone)
}
