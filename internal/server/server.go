// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// cmd/server creates the long-lived pieces and passes them in:
//
//	config → sqlstore.DB, auth.TokenService, auth.PasswordService, logger
//	server.New wires: stores → services → handlers → routes
//
// Nothing in here reads environment variables or opens files, so tests
// build a Server around a temporary database exactly the way main does.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/handler"
	"github.com/sakif/taskboard/internal/middleware"
	"github.com/sakif/taskboard/internal/repository/sqlstore"
	"github.com/sakif/taskboard/internal/service"
)

// DefaultShutdownTimeout is how long in-flight requests get to finish.
const DefaultShutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database pool it is given. Start closes it after the
// HTTP server has drained, so no request is cut off mid-query.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqlstore.DB
}

// New wires the dependency graph and the routes.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete stores)
// - Handlers get services (not the repositories or DB)
func New(
	cfg Config,
	db *sqlstore.DB,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	authService := service.NewAuthService(db.Users(), tokens, passwords, logger)
	taskService := service.NewTaskService(db.Tasks(), logger)

	s.setupRoutes(
		handler.NewAuthHandler(authService, logger),
		handler.NewTaskHandler(taskService, logger),
		auth.RequireAuth(tokens),
	)

	return s
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /api/health            → liveness (no auth)
// POST   /api/auth/register     → create account (no auth)
// POST   /api/auth/login        → get a bearer token (no auth)
// GET    /api/tasks             → list caller's tasks
// POST   /api/tasks             → create task
// GET    /api/tasks/{id}        → get task
// PUT    /api/tasks/{id}        → update task
// DELETE /api/tasks/{id}        → delete task
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
// 1. RequestID: assigns a unique ID to each request
// 2. RealIP: extracts the client IP from proxy headers
// 3. Logger: logs each request with timing info and the request ID
// 4. Recoverer: turns a panic into a 500 (inside Logger, so it gets logged)
// 5. CORS: open to every origin; answers preflight requests itself
func (s *Server) setupRoutes(authHandler *handler.AuthHandler, taskHandler *handler.TaskHandler, requireAuth func(http.Handler) http.Handler) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Set before any Route() so the sub-routers inherit them.
	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
		})

		// Everything under /api/tasks needs a valid bearer token.
		r.Route("/tasks", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", taskHandler.HandleList)
			r.Post("/", taskHandler.HandleCreate)
			r.Get("/{id}", taskHandler.HandleGet)
			r.Put("/{id}", taskHandler.HandleUpdate)
			r.Delete("/{id}", taskHandler.HandleDelete)
		})
	})
}

// Handler returns the root HTTP handler, traced with OpenTelemetry.
// When tracing isn't configured the global provider is a no-op.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "taskboard",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (ShutdownTimeout)
// 3. Close the database pool
//
// cmd/server passes a context from signal.NotifyContext, so SIGINT and
// SIGTERM trigger step 1.
func (s *Server) Start(ctx context.Context) error {
	// Runs after everything else in this function, including Shutdown.
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", string(s.db.Dialect())),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
