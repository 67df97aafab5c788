package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskdeck/taskdeck/internal/common"
	"github.com/taskdeck/taskdeck/internal/server/models"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// taskRow carries a task joined with its project's display fields.
type taskRow struct {
	models.Task
	ProjectName  *string `db:"project_name"`
	ProjectColor *string `db:"project_color"`
}

func (r taskRow) toTask() *models.Task {
	task := r.Task
	if task.ProjectID != nil && r.ProjectName != nil && r.ProjectColor != nil {
		task.Project = &models.ProjectRef{
			ID:    *task.ProjectID,
			Name:  *r.ProjectName,
			Color: *r.ProjectColor,
		}
	}
	return &task
}

func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`INSERT INTO tasks (id, user_id, project_id, title, description, priority, due_date, completed, completed_at, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, user_id, project_id, title, description, priority, due_date, completed, completed_at, tags, created_at, updated_at
		 `

	created := &models.Task{}
	err := r.db.GetContext(ctx, created, query,
		task.ID, task.UserID, task.ProjectID, task.Title, task.Description,
		task.Priority, task.DueDate, task.Completed, task.CompletedAt, task.Tags)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, userID string) (*models.Task, error) {

	query := `SELECT ` + taskColumns + `
		 FROM tasks t
		 LEFT JOIN projects p ON p.id = t.project_id
		 WHERE t.id = $1 AND t.user_id = $2
		 `

	row := taskRow{}
	err := r.db.GetContext(ctx, &row, query, id, userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return row.toTask(), nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, q ListQuery) ([]*models.Task, int, error) {

	countSQL, countArgs, err := BuildCount(userID, q)
	if err != nil {
		return nil, 0, fmt.Errorf("error building count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %w", err)
	}

	tasks := []*models.Task{}

	// a zero limit is a valid degenerate page: report the total, fetch nothing
	if q.Limit == 0 {
		return tasks, total, nil
	}

	selectSQL, selectArgs, err := BuildSelect(userID, q)
	if err != nil {
		return nil, 0, fmt.Errorf("error building select query: %w", err)
	}

	rows := []taskRow{}
	if err := r.db.SelectContext(ctx, &rows, selectSQL, selectArgs...); err != nil {
		return nil, 0, fmt.Errorf("error performing sql request: %w", err)
	}

	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}

	return tasks, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {

	query :=
		`UPDATE tasks
		 SET project_id = $3, title = $4, description = $5, priority = $6,
		     due_date = $7, completed = $8, completed_at = $9, tags = $10, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, project_id, title, description, priority, due_date, completed, completed_at, tags, created_at, updated_at
		 `

	updated := &models.Task{}
	err := r.db.GetContext(ctx, updated, query,
		task.ID, task.UserID, task.ProjectID, task.Title, task.Description,
		task.Priority, task.DueDate, task.Completed, task.CompletedAt, task.Tags)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
