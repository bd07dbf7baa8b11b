package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	trainerdomain "github.com/smallbiznis/gymdesk/internal/trainer/domain"
)

type createTrainerRequest struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Specialization string  `json:"specialization"`
	Experience     int     `json:"experience"`
	Salary         float64 `json:"salary"`
	IsActive       *bool   `json:"isActive"`
}

func (s *Server) CreateTrainer(c *gin.Context) {
	var req createTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	trainer, err := s.trainerSvc.Create(c.Request.Context(), trainerdomain.CreateTrainerRequest{
		Name:           strings.TrimSpace(req.Name),
		Phone:          strings.TrimSpace(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Specialization: strings.TrimSpace(req.Specialization),
		Experience:     req.Experience,
		Salary:         req.Salary,
		IsActive:       req.IsActive,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": trainer})
}

func (s *Server) ListTrainers(c *gin.Context) {
	trainers, err := s.trainerSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trainers})
}

func (s *Server) GetTrainer(c *gin.Context) {
	trainer, err := s.trainerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trainer})
}

func (s *Server) DeleteTrainer(c *gin.Context) {
	if err := s.trainerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trainer removed"})
}
