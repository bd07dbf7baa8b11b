package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	memberdomain "github.com/smallbiznis/gymdesk/internal/member/domain"
)

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeWithContext(c *gin.Context, object string, action string) error {
	user, ok := currentUser(c)
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), user.Role, strings.TrimSpace(object), strings.TrimSpace(action))
}

// memberActor carries the caller identity into member plan edits so the
// trainer ownership rule can be applied.
func memberActor(c *gin.Context) memberdomain.Actor {
	user, ok := currentUser(c)
	if !ok {
		return memberdomain.Actor{}
	}
	return memberdomain.Actor{Role: user.Role, Email: user.Email}
}
