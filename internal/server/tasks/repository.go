package tasks

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id, userID string) (*models.Task, error)

	// List returns one page of the caller's tasks plus the total count of
	// records matching the filter ignoring pagination.
	List(ctx context.Context, userID string, q ListQuery) ([]*models.Task, int, error)

	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id, userID string) error
}
