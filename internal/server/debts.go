package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/escolaris/finance/internal/account"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
)

type createDebtRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	ConceptID string `json:"concept_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	DueDate   string `json:"due_date" binding:"required"`
}

func (s *Server) CreateDebt(c *gin.Context) {
	var req createDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	studentID, err := snowflake.ParseString(req.StudentID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	conceptID, err := snowflake.ParseString(req.ConceptID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	amount, ok := account.ParseAmount(req.Amount)
	if !ok {
		AbortWithError(c, debtdomain.ErrInvalidAmount)
		return
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	debt, err := s.debtSvc.Create(c.Request.Context(), debtdomain.CreateDebtInput{
		StudentID: studentID,
		ConceptID: conceptID,
		Amount:    amount,
		DueDate:   dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, debt)
}

func (s *Server) GetDebt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	debt, err := s.debtSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, debt)
}

func (s *Server) DeleteDebt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := s.debtSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
