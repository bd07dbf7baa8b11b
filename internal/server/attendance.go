package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type markAttendanceRequest struct {
	MemberID string `json:"memberId"`
}

func (s *Server) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.attendanceSvc.Mark(c.Request.Context(), strings.TrimSpace(req.MemberID))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) ListTodayAttendance(c *gin.Context) {
	records, err := s.attendanceSvc.ListToday(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
