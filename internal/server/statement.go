package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/escolaris/finance/internal/account"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
)

type statementDebt struct {
	ID          string    `json:"id"`
	Concept     string    `json:"concept"`
	Amount      string    `json:"amount"`
	Fee         string    `json:"fee"`
	TotalDue    string    `json:"total_due"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	Overdue     bool      `json:"overdue"`
	DaysOverdue int       `json:"days_overdue"`
}

type statementPayment struct {
	ID     string    `json:"id"`
	Amount string    `json:"amount"`
	PaidAt time.Time `json:"paid_at"`
	Method string    `json:"method"`
	Status string    `json:"status"`
	DebtID string    `json:"debt_id,omitempty"`
}

type statementResponse struct {
	StudentID        string             `json:"student_id"`
	StudentName      string             `json:"student_name"`
	Debts            []statementDebt    `json:"debts"`
	Payments         []statementPayment `json:"payments"`
	TotalDebt        string             `json:"total_debt"`
	TotalPaid        string             `json:"total_paid"`
	Balance          string             `json:"balance"`
	PendingDebtTotal string             `json:"pending_debt_total"`
}

// GetStatement renders the student's account: open debts with their
// surcharge view, payment history, and derived totals. A student with
// no payment history still gets a statement with an empty list.
func (s *Server) GetStatement(c *gin.Context) {
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	student, err := s.studentRepo.FindStudent(ctx, s.db, studentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if student == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	debts, err := s.debtRepo.ListByStudent(ctx, s.db, studentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	payments, err := s.paymentRepo.ListByStudent(ctx, s.db, studentID)
	if err != nil {
		s.log.Warn("payment history unavailable, rendering statement without it",
			zap.Int64("student_id", int64(studentID)),
			zap.Error(err),
		)
		payments = nil
	}

	now := s.clock.Now()
	policy := account.LateFeePolicy{
		Enabled:          s.cfg.LateFee.Enabled,
		SurchargePercent: s.cfg.LateFee.SurchargePercent,
	}
	totals := account.ComputeSnapshot(debts, payments)

	resp := statementResponse{
		StudentID:        studentID.String(),
		StudentName:      student.FullName(),
		Debts:            make([]statementDebt, 0, len(debts)),
		Payments:         make([]statementPayment, 0, len(payments)),
		TotalDebt:        account.FormatAmount(totals.TotalDebt),
		TotalPaid:        account.FormatAmount(totals.TotalPaid),
		Balance:          account.FormatAmount(totals.Balance),
		PendingDebtTotal: account.FormatAmount(totals.PendingDebtTotal),
	}

	for _, d := range debts {
		resp.Debts = append(resp.Debts, s.renderDebt(ctx, d, policy, now))
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, renderPayment(p))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderDebt(ctx context.Context, d debtdomain.Debt, policy account.LateFeePolicy, now time.Time) statementDebt {
	conceptName := ""
	if concept, err := s.debtRepo.FindConcept(ctx, s.db, d.ConceptID); err == nil && concept != nil {
		conceptName = concept.Name
	}

	breakdown := account.ApplyLateFee(d, policy, now)
	days := d.DaysOverdue(now)

	return statementDebt{
		ID:          d.ID.String(),
		Concept:     conceptName,
		Amount:      account.FormatAmount(breakdown.Principal),
		Fee:         account.FormatAmount(breakdown.Fee),
		TotalDue:    account.FormatAmount(breakdown.Total),
		DueDate:     d.DueDate,
		Status:      string(d.Status),
		Overdue:     days > 0 && !d.Status.Settled(),
		DaysOverdue: days,
	}
}

func renderPayment(p paymentdomain.Payment) statementPayment {
	item := statementPayment{
		ID:     p.ID.String(),
		Amount: account.FormatAmount(p.Amount),
		PaidAt: p.PaidAt,
		Method: string(p.Method),
		Status: string(p.Status),
	}
	if p.Linked() {
		item.DebtID = p.DebtID.String()
	}
	return item
}
