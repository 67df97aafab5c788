package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/server/models"
)

// userBody shapes the user object returned by the auth endpoints; the
// password hash never appears.
func userBody(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
	}
}

func (s *Server) handleSignup(c *gin.Context) {

	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, token, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	s.setAuthCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   token,
		"user":    userBody(user),
	})
}

func (s *Server) handleLogin(c *gin.Context) {

	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	s.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userBody(user),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.clearAuthCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (s *Server) handleMe(c *gin.Context) {

	user, err := s.users.GetByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(notFound("User", err))
		return
	}

	body := userBody(user)
	body["createdAt"] = user.CreatedAt
	c.JSON(http.StatusOK, gin.H{"user": body})
}
