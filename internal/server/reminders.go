package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunReminderSweep triggers a reminder sweep across all students. A
// sweep already in flight or one finished too recently yields a
// conflict instead of double-sending.
func (s *Server) RunReminderSweep(c *gin.Context) {
	summary, err := s.reminderSvc.Sweep(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListDebtNotifications returns the reminder audit trail for one debt,
// oldest first.
func (s *Server) ListDebtNotifications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	debt, err := s.debtRepo.FindByID(ctx, s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if debt == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	logs, err := s.reminderRepo.ListByDebt(ctx, s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": logs})
}
