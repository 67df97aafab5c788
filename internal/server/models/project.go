package models

import "time"

// Project is a named task grouping owned by exactly one user.
// TaskCount is computed per fetch, never stored.
type Project struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Name       string    `db:"name" json:"name"`
	Color      string    `db:"color" json:"color"`
	IsFavorite bool      `db:"is_favorite" json:"isFavorite"`
	TaskCount  int       `db:"task_count" json:"taskCount"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
