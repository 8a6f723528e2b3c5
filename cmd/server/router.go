package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evanhall/tasklist-api/internal/api"
	apiMiddleware "github.com/evanhall/tasklist-api/internal/api/middleware"
	"github.com/evanhall/tasklist-api/internal/service"
	"github.com/evanhall/tasklist-api/internal/service/auth"
	"github.com/evanhall/tasklist-api/internal/store"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func setupRouter(
	userStore store.UserStore,
	userService service.UserService,
	taskService service.TaskService,
	jwtService auth.JWTService,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(userService, jwtService, logger)
	taskHandler := api.NewTaskHandler(taskService, logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(jwtService, userStore)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/completed", taskHandler.ListCompletedTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Put("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
