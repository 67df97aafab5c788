package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/server/projects"
)

func (s *Server) handleListProjects(c *gin.Context) {

	list, err := s.projects.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (s *Server) handleGetProject(c *gin.Context) {

	project, err := s.projects.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(notFound("Project", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (s *Server) handleCreateProject(c *gin.Context) {

	var req createProjectRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	project, err := s.projects.Create(c.Request.Context(), currentUserID(c), projects.CreateParams{
		Name:       req.Name,
		Color:      req.Color,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

func (s *Server) handleUpdateProject(c *gin.Context) {

	var req updateProjectRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	project, err := s.projects.Update(c.Request.Context(), currentUserID(c), c.Param("id"), projects.UpdateParams{
		Name:       req.Name,
		Color:      req.Color,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		c.Error(notFound("Project", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (s *Server) handleDeleteProject(c *gin.Context) {

	deleteTasks := c.Query("deleteTasks") == "true"

	err := s.projects.Delete(c.Request.Context(), currentUserID(c), c.Param("id"), deleteTasks)
	if err != nil {
		c.Error(notFound("Project", err))
		return
	}

	c.Status(http.StatusNoContent)
}
