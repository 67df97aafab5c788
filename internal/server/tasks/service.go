// Package tasks implements the primary work items: owner-scoped CRUD, the
// completion state machine, and the filter/sort/pagination engine behind
// task listing.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/server/models"
)

// DefaultPriority is the least urgent level; priorities run 1 (most urgent)
// through 4.
const DefaultPriority = 4

// ProjectLookup is the slice of the projects repository the task service
// needs to validate project references against the caller's ownership.
type ProjectLookup interface {
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)
}

// CreateParams carries the creatable task fields. Nil optionals take their
// documented defaults.
type CreateParams struct {
	Title       string
	Description string
	Priority    *int
	DueDate     *time.Time
	ProjectID   *string
	Tags        []string
}

// UpdateParams is a partial patch. The Set flags distinguish "clear this
// nullable field" from "leave it alone". CompletedAt is deliberately absent:
// it is recomputed here on every transition and never client-supplied.
type UpdateParams struct {
	Title        *string
	Description  *string
	Priority     *int
	DueDate      *time.Time
	DueDateSet   bool
	ProjectID    *string
	ProjectIDSet bool
	Tags         *[]string
	Completed    *bool
}

// Pagination is the metadata returned alongside every task page.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one page of tasks plus its pagination metadata.
type Page struct {
	Tasks      []*models.Task
	Pagination Pagination
}

type Service struct {
	repo     Repository
	projects ProjectLookup
}

func NewService(repo Repository, projects ProjectLookup) *Service {
	return &Service{repo: repo, projects: projects}
}

// resolveProject checks that a referenced project exists and belongs to the
// caller. A dangling or foreign reference is an input error, not a 404: the
// task itself is fine, the field is not.
func (s *Service) resolveProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewFieldError("projectId", "project not found")
		}
		return nil, fmt.Errorf("error resolving project: %w", err)
	}
	return project, nil
}

func projectRef(p *models.Project) *models.ProjectRef {
	return &models.ProjectRef{ID: p.ID, Name: p.Name, Color: p.Color}
}

// applyCompletion is the single mutation path for the completion state
// machine: every transition into completed stamps CompletedAt, every
// transition out clears it, and a non-transition leaves it untouched.
func applyCompletion(task *models.Task, completed bool) {
	if task.Completed == completed {
		return
	}
	task.Completed = completed
	if completed {
		now := time.Now().UTC()
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}
}

// Create stamps the caller as owner, applies defaults and persists the task.
func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*models.Task, error) {

	task := &models.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       p.Title,
		Description: p.Description,
		Priority:    DefaultPriority,
		DueDate:     p.DueDate,
		Tags:        pq.StringArray{},
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Tags != nil {
		task.Tags = pq.StringArray(p.Tags)
	}

	var ref *models.ProjectRef
	if p.ProjectID != nil {
		project, err := s.resolveProject(ctx, userID, *p.ProjectID)
		if err != nil {
			return nil, err
		}
		task.ProjectID = p.ProjectID
		ref = projectRef(project)
	}

	task, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}

	task.Project = ref
	return task, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// List produces one page of the caller's tasks and the pagination metadata.
// It is read-only and safe to repeat.
func (s *Service) List(ctx context.Context, userID string, q ListQuery) (*Page, error) {

	q.normalize()

	tasks, total, err := s.repo.List(ctx, userID, q)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}

	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}

	return &Page{
		Tasks: tasks,
		Pagination: Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Update applies a partial patch. A completed flag in the patch routes
// through applyCompletion so CompletedAt stays consistent.
func (s *Service) Update(ctx context.Context, userID, id string, p UpdateParams) (*models.Task, error) {

	task, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.DueDateSet {
		task.DueDate = p.DueDate
	}
	if p.Tags != nil {
		task.Tags = pq.StringArray(*p.Tags)
	}

	ref := task.Project
	if p.ProjectIDSet {
		if p.ProjectID != nil {
			project, err := s.resolveProject(ctx, userID, *p.ProjectID)
			if err != nil {
				return nil, err
			}
			ref = projectRef(project)
		} else {
			ref = nil
		}
		task.ProjectID = p.ProjectID
	}

	if p.Completed != nil {
		applyCompletion(task, *p.Completed)
	}

	task, err = s.repo.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	task.Project = ref
	return task, nil
}

// ToggleComplete flips the completion flag. Calling it twice restores the
// original state, but each call is a real transition with its own stamp.
func (s *Service) ToggleComplete(ctx context.Context, userID, id string) (*models.Task, error) {

	task, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	ref := task.Project
	applyCompletion(task, !task.Completed)

	task, err = s.repo.Update(ctx, task)
	if err != nil {
		return nil, err
	}

	task.Project = ref
	return task, nil
}

// Delete removes a single task. No cascading effects.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, id, userID)
}
