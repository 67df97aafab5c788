// Package projects implements project grouping: CRUD scoped by owner and
// the cascade/detach policy applied when a project is deleted.
package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/server/models"
)

// DefaultColor matches the gray the SPA renders for unstyled projects.
const DefaultColor = "#808080"

// CreateParams carries the creatable project fields.
type CreateParams struct {
	Name       string
	Color      *string
	IsFavorite *bool
}

// UpdateParams is a partial patch; nil fields are left unchanged.
type UpdateParams struct {
	Name       *string
	Color      *string
	IsFavorite *bool
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stamps the caller as owner and applies defaults for omitted fields.
func (s *Service) Create(ctx context.Context, userID string, p CreateParams) (*models.Project, error) {

	project := &models.Project{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   p.Name,
		Color:  DefaultColor,
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
	if p.IsFavorite != nil {
		project.IsFavorite = *p.IsFavorite
	}

	project, err := s.repo.Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	return project, nil
}

// List returns the caller's projects, favorites first, then newest.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Project, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	return s.repo.GetByID(ctx, id, userID)
}

// Update applies a partial patch on top of the stored record. The scoped
// lookup doubles as the ownership check: a foreign id surfaces as NotFound.
func (s *Service) Update(ctx context.Context, userID, id string, p UpdateParams) (*models.Project, error) {

	project, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
	if p.IsFavorite != nil {
		project.IsFavorite = *p.IsFavorite
	}

	return s.repo.Update(ctx, project)
}

// Delete removes the project. With deleteTasks the referencing tasks go with
// it; otherwise they are detached (projectId cleared), never deleted.
func (s *Service) Delete(ctx context.Context, userID, id string, deleteTasks bool) error {
	return s.repo.Delete(ctx, id, userID, deleteTasks)
}
