package projects

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)
	List(ctx context.Context, userID string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)

	// Delete removes the project and either deletes or detaches its tasks,
	// as one logical unit. A missing or foreign id yields common.ErrorNotFound.
	Delete(ctx context.Context, id, userID string, deleteTasks bool) error
}
