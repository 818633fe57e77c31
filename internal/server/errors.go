package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	allocationdomain "github.com/escolaris/finance/internal/allocation/domain"
	debtdomain "github.com/escolaris/finance/internal/debt/domain"
	paymentdomain "github.com/escolaris/finance/internal/payment/domain"
	reminderdomain "github.com/escolaris/finance/internal/reminder/domain"
	snapshotdomain "github.com/escolaris/finance/internal/risksnapshot/domain"
	studentdomain "github.com/escolaris/finance/internal/student/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ErrorHandlingMiddleware converts errors pushed onto the gin context
// into a uniform JSON error body. Handlers never write error bodies
// themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, allocationdomain.ErrRunInProgress),
		errors.Is(err, reminderdomain.ErrSweepTooSoon),
		errors.Is(err, debtdomain.ErrDebtHasPayments):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, studentdomain.ErrStudentNotFound),
		errors.Is(err, debtdomain.ErrDebtNotFound),
		errors.Is(err, debtdomain.ErrConceptNotFound),
		errors.Is(err, paymentdomain.ErrPaymentNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, debtdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidMethod),
		errors.Is(err, allocationdomain.ErrInvalidStudent),
		errors.Is(err, snapshotdomain.ErrInvalidStudent),
		errors.Is(err, snapshotdomain.ErrInvalidPeriod):
		return true
	default:
		return false
	}
}
