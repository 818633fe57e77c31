package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/escolaris/finance/internal/account"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
)

type registerPaymentRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	ConceptID string `json:"concept_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required"`
	PaidAt    string `json:"paid_at"`
}

func (s *Server) RegisterPayment(c *gin.Context) {
	var req registerPaymentRequest
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
		AbortWithError(c, paymentdomain.ErrInvalidAmount)
		return
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	payment, err := s.paymentSvc.Register(c.Request.Context(), paymentdomain.RegisterPaymentInput{
		StudentID: studentID,
		ConceptID: conceptID,
		Amount:    amount,
		PaidAt:    paidAt,
		Method:    paymentdomain.PaymentMethod(req.Method),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

func (s *Server) GetPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := s.paymentSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	payment, err := s.paymentSvc.Confirm(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}
