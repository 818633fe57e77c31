package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunAllocation triggers the reconciliation engine for one student and
// returns what it applied and what it skipped.
func (s *Server) RunAllocation(c *gin.Context) {
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := s.allocationSvc.Run(c.Request.Context(), studentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
