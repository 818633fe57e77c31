package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/escolaris/finance/internal/account"
)

type riskResponse struct {
	StudentID    string `json:"student_id"`
	Tier         string `json:"tier"`
	OverdueCount int    `json:"overdue_count"`
	TotalDebt    string `json:"total_debt"`
	TotalPaid    string `json:"total_paid"`
	Balance      string `json:"balance"`
}

// GetRisk reports the on-demand risk view. This endpoint tiers by how
// many debts are overdue; the stored monthly snapshots tier by how far
// overdue the worst debt is.
func (s *Server) GetRisk(c *gin.Context) {
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
		AbortWithError(c, err)
		return
	}

	now := s.clock.Now()
	overdueCount := 0
	for _, d := range debts {
		if !d.Status.Settled() && d.DueDate.Before(now) {
			overdueCount++
		}
	}
	totals := account.ComputeSnapshot(debts, payments)

	c.JSON(http.StatusOK, riskResponse{
		StudentID:    studentID.String(),
		Tier:         string(account.ClassifyByOverdueCount(overdueCount)),
		OverdueCount: overdueCount,
		TotalDebt:    account.FormatAmount(totals.TotalDebt),
		TotalPaid:    account.FormatAmount(totals.TotalPaid),
		Balance:      account.FormatAmount(totals.Balance),
	})
}
