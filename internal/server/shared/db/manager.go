// Package db wires the repositories over a single database handle.
package db

import (
	"context"

	"github.com/taskdeck/taskdeck/internal/server/projects"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
	"github.com/taskdeck/taskdeck/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Close() error
	Users() users.Repository
	Projects() projects.Repository
	Tasks() tasks.Repository
}
