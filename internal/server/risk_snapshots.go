package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type generateSnapshotsRequest struct {
	StudentID string `json:"student_id"`
	Month     int    `json:"month" binding:"required"`
	Year      int    `json:"year" binding:"required"`
}

// GenerateRiskSnapshots writes the monthly snapshots for one student or
// the whole active roster. Already-written periods come back unchanged.
func (s *Server) GenerateRiskSnapshots(c *gin.Context) {
	var req generateSnapshotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	ctx := c.Request.Context()

	if req.StudentID != "" {
		studentID, err := snowflake.ParseString(req.StudentID)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		snap, created, err := s.snapshotSvc.GenerateForPeriod(ctx, studentID, req.Month, req.Year)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"snapshot": snap, "created": created})
		return
	}

	result, err := s.snapshotSvc.GenerateAll(ctx, req.Month, req.Year)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ListRiskSnapshots(c *gin.Context) {
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	snapshots, err := s.snapshotRepo.ListByStudent(c.Request.Context(), s.db, studentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
