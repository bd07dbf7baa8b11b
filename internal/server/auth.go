package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/gymdesk/internal/auth/domain"
	"github.com/smallbiznis/gymdesk/internal/authorization"
	"github.com/smallbiznis/gymdesk/internal/observability/logger"
	"go.uber.org/zap"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Register(c *gin.Context) {
	if err := s.authorizeRegistration(c); err != nil {
		AbortWithError(c, err)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.Register(c.Request.Context(), authdomain.RegisterRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// authorizeRegistration leaves registration open until the first account
// exists. After that only an admin may add staff accounts.
func (s *Server) authorizeRegistration(c *gin.Context) error {
	count, err := s.authsvc.CountUsers(c.Request.Context())
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	raw := bearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		return ErrUnauthorized
	}
	user, err := s.authsvc.Authenticate(c.Request.Context(), raw)
	if err != nil || user == nil {
		return ErrUnauthorized
	}
	c.Set(contextUserKey, user)
	return s.authorizeWithContext(c, authorization.ObjectUser, authorization.ActionCreate)
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	resp, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.FromContext(c.Request.Context()).Info("login failed", zap.String("client_ip", c.ClientIP()))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
