package server

import (
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the session cookie into an authenticated user id.
// Any session failure maps to a plain 401 so callers cannot probe session
// state.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, authdomain.ErrSessionExpired) ||
				errors.Is(err, authdomain.ErrSessionRevoked) ||
				errors.Is(err, authdomain.ErrSessionNotFound) ||
				errors.Is(err, authdomain.ErrInvalidSession) {
				s.sessions.Clear(c)
				AbortWithError(c, ErrUnauthorized)
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, sess.UserID.String())
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	raw, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	str, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := snowflake.ParseString(str)
	if err != nil {
		return 0, false
	}
	return id, true
}

func requireUserID(c *gin.Context) (snowflake.ID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}
	return id, true
}
