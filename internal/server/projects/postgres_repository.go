package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/dbx"
	"github.com/taskdeck/taskdeck/internal/server/models"
)

// projectColumns selects a project row together with its computed task count.
const projectColumns = `
	p.id, p.user_id, p.name, p.color, p.is_favorite, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {

	query :=
		`INSERT INTO projects (id, user_id, name, color, is_favorite)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, name, color, is_favorite, created_at, updated_at, 0 AS task_count
		 `

	created := &models.Project{}
	err := r.db.GetContext(ctx, created, query,
		project.ID, project.UserID, project.Name, project.Color, project.IsFavorite)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {

	query := `SELECT` + projectColumns + `
		 FROM projects p
		 WHERE p.id = $1 AND p.user_id = $2
		 `

	project := &models.Project{}
	err := r.db.GetContext(ctx, project, query, id, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Project, error) {

	query := `SELECT` + projectColumns + `
		 FROM projects p
		 WHERE p.user_id = $1
		 ORDER BY p.is_favorite DESC, p.created_at DESC
		 `

	projects := []*models.Project{}
	err := r.db.SelectContext(ctx, &projects, query, userID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return projects, nil
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) (*models.Project, error) {

	query :=
		`UPDATE projects p
		 SET name = $3, color = $4, is_favorite = $5, updated_at = now()
		 WHERE p.id = $1 AND p.user_id = $2
		 RETURNING` + projectColumns

	updated := &models.Project{}
	err := r.db.GetContext(ctx, updated, query,
		project.ID, project.UserID, project.Name, project.Color, project.IsFavorite)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return updated, nil
}

// Delete removes the project and handles its tasks in a single transaction,
// so a failure in either half rolls back the whole operation.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID string, deleteTasks bool) error {

	return dbx.WithTx(ctx, r.db.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {

		var exists bool
		row := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND user_id = $2)`, id, userID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("error performing sql request: %w", err)
		}
		if !exists {
			return common.ErrorNotFound
		}

		if deleteTasks {
			_, err := tx.ExecContext(ctx,
				`DELETE FROM tasks WHERE project_id = $1 AND user_id = $2`, id, userID)
			if err != nil {
				return fmt.Errorf("error deleting project tasks: %w", err)
			}
		} else {
			_, err := tx.ExecContext(ctx,
				`UPDATE tasks SET project_id = NULL, updated_at = now()
				 WHERE project_id = $1 AND user_id = $2`, id, userID)
			if err != nil {
				return fmt.Errorf("error detaching project tasks: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx,
			`DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("error deleting project: %w", err)
		}

		return nil
	})
}
