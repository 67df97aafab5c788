// Package httpapi exposes the REST surface: routing, authentication
// middleware, request validation and the translation of service errors to
// HTTP responses. Business rules live in the services, never here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/server/config"
	"github.com/taskdeck/taskdeck/internal/server/projects"
	"github.com/taskdeck/taskdeck/internal/server/tasks"
	"github.com/taskdeck/taskdeck/internal/server/users"
)

type Server struct {
	address       string
	router        *gin.Engine
	logger        logging.Logger
	users         *users.Service
	projects      *projects.Service
	tasks         *tasks.Service
	jwtSecret     []byte
	secureCookies bool
}

var tagNamesOnce sync.Once

// registerTagNames makes validator report json field names in its errors,
// so clients see "dueDate" rather than "DueDate".
func registerTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func NewServer(cfg *config.Config, l logging.Logger, us *users.Service, ps *projects.Service, ts *tasks.Service) *Server {

	gin.SetMode(gin.ReleaseMode)
	registerTagNames()

	s := &Server{
		address:       cfg.EndpointAddr,
		logger:        l.With("module", "httpapi"),
		users:         us,
		projects:      ps,
		tasks:         ts,
		jwtSecret:     []byte(cfg.SecretKey),
		secureCookies: cfg.SecureCookies,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), s.translateErrors())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	api.GET("/health", s.handleHealth)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", s.handleSignup)
		auth.POST("/login", s.handleLogin)
		auth.POST("/logout", s.authenticate, s.handleLogout)
		auth.GET("/me", s.authenticate, s.handleMe)
	}

	projectRoutes := api.Group("/projects", s.authenticate)
	{
		projectRoutes.GET("", s.handleListProjects)
		projectRoutes.GET("/:id", s.handleGetProject)
		projectRoutes.POST("", s.handleCreateProject)
		projectRoutes.PUT("/:id", s.handleUpdateProject)
		projectRoutes.DELETE("/:id", s.handleDeleteProject)
	}

	taskRoutes := api.Group("/tasks", s.authenticate)
	{
		taskRoutes.GET("", s.handleListTasks)
		taskRoutes.GET("/:id", s.handleGetTask)
		taskRoutes.POST("", s.handleCreateTask)
		taskRoutes.PUT("/:id", s.handleUpdateTask)
		taskRoutes.DELETE("/:id", s.handleDeleteTask)
		taskRoutes.PATCH("/:id/toggle", s.handleToggleTask)
	}

	s.router = router
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Server is running"})
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
