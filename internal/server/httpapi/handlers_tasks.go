package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
)

// parseListQuery maps the optional query parameters onto the filter engine's
// input. The caller's identity is never part of this: owner scoping is
// applied by the repository unconditionally.
func parseListQuery(c *gin.Context) (tasks.ListQuery, error) {

	q := tasks.ListQuery{
		Page:      1,
		Limit:     tasks.DefaultLimit,
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Search:    c.Query("q"),
	}

	if v := c.Query("projectId"); v != "" {
		q.ProjectID = &v
	}

	if v := c.Query("priority"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 4 {
			return q, common.NewFieldError("priority", "must be an integer between 1 and 4")
		}
		q.Priority = &p
	}

	if v := c.Query("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return q, common.NewFieldError("completed", "must be a boolean")
		}
		q.Completed = &b
	}

	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return q, common.NewFieldError("page", "must be a positive integer")
		}
		q.Page = p
	}

	if v := c.Query("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 0 {
			return q, common.NewFieldError("limit", "must be a non-negative integer")
		}
		q.Limit = l
	}

	return q, nil
}

func (s *Server) handleListTasks(c *gin.Context) {

	q, err := parseListQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	page, err := s.tasks.List(c.Request.Context(), currentUserID(c), q)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":      page.Tasks,
		"pagination": page.Pagination,
	})
}

func (s *Server) handleGetTask(c *gin.Context) {

	task, err := s.tasks.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(notFound("Task", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (s *Server) handleCreateTask(c *gin.Context) {

	var req createTaskRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), currentUserID(c), tasks.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		Tags:        req.Tags,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {

	var req updateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), currentUserID(c), c.Param("id"), tasks.UpdateParams{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate.Value,
		DueDateSet:   req.DueDate.Set,
		ProjectID:    req.ProjectID.Value,
		ProjectIDSet: req.ProjectID.Set,
		Tags:         req.Tags,
		Completed:    req.Completed,
	})
	if err != nil {
		c.Error(notFound("Task", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (s *Server) handleDeleteTask(c *gin.Context) {

	err := s.tasks.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(notFound("Task", err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleToggleTask(c *gin.Context) {

	task, err := s.tasks.ToggleComplete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		c.Error(notFound("Task", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}
