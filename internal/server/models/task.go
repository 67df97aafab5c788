package models

import (
	"time"

	"github.com/lib/pq"
)

// ProjectRef is the denormalized slice of a project attached to task
// responses, so clients can render name and color without a second fetch.
type ProjectRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Task is the primary work item. ProjectID is nullable: "no project" is a
// valid state distinct from a deleted project. CompletedAt is maintained by
// the task service on every transition of Completed and is never
// client-supplied.
type Task struct {
	ID          string         `db:"id" json:"id"`
	UserID      string         `db:"user_id" json:"userId"`
	ProjectID   *string        `db:"project_id" json:"projectId"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Priority    int            `db:"priority" json:"priority"`
	DueDate     *time.Time     `db:"due_date" json:"dueDate"`
	Completed   bool           `db:"completed" json:"completed"`
	CompletedAt *time.Time     `db:"completed_at" json:"completedAt"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`

	Project *ProjectRef `db:"-" json:"project,omitempty"`
}
