// Package server initializes and runs the application: it wires the
// database-backed repositories, the services and the HTTP API, and handles
// graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/server/config"
	"github.com/taskdeck/taskdeck/internal/server/httpapi"
	"github.com/taskdeck/taskdeck/internal/server/projects"
	"github.com/taskdeck/taskdeck/internal/server/shared/db"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
	"github.com/taskdeck/taskdeck/internal/server/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  db.RepositoryManager
	api    *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	repos, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	userService := users.NewService(repos.Users(), c)
	projectService := projects.NewService(repos.Projects())
	taskService := tasks.NewService(repos.Tasks(), repos.Projects())

	api := httpapi.NewServer(c, logger, userService, projectService, taskService)

	return &App{config: c, logger: logger, repos: repos, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}
