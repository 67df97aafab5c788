package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/server/auth"
)

// authCookieName is where the bearer token is stored for browser clients.
const authCookieName = "token"

const ctxUserIDKey = "userID"

// currentUserID returns the authenticated caller's id. Only valid on routes
// behind the authenticate middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// authenticate resolves the bearer token from the auth cookie or the
// Authorization header. The three failure modes get distinct messages:
// absent, malformed and expired. A decoded token whose user has vanished is
// also rejected.
func (s *Server) authenticate(c *gin.Context) {

	token, _ := c.Cookie(authCookieName)
	if token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		message := "Invalid token"
		if errors.Is(err, common.ErrorTokenExpired) {
			message = "Token expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
		return
	}

	if _, err := s.users.GetByID(c.Request.Context(), claims.UserID); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	c.Set(ctxUserIDKey, claims.UserID)
	c.Next()
}

// setAuthCookie delivers the token as an HTTP-only same-site cookie; the
// response body carries the same token for header-based clients.
func (s *Server) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookieName, token, int(s.users.TokenValidity().Seconds()), "/", "", s.secureCookies, true)
}

func (s *Server) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(authCookieName, "", -1, "/", "", s.secureCookies, true)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
