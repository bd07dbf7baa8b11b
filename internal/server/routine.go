package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	routinedomain "github.com/smallbiznis/gymdesk/internal/routine/domain"
)

type createRoutineRequest struct {
	MemberID  string                   `json:"memberId"`
	TrainerID string                   `json:"trainerId"`
	Name      string                   `json:"name"`
	Exercises []routinedomain.Exercise `json:"exercises"`
}

func (s *Server) CreateRoutine(c *gin.Context) {
	var req createRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	routine, err := s.routineSvc.Create(c.Request.Context(), routinedomain.CreateRoutineRequest{
		MemberID:  strings.TrimSpace(req.MemberID),
		TrainerID: strings.TrimSpace(req.TrainerID),
		Name:      strings.TrimSpace(req.Name),
		Exercises: req.Exercises,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": routine})
}

func (s *Server) ListRoutines(c *gin.Context) {
	routines, err := s.routineSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("memberId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": routines})
}
