package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/llegomark/tasks-api/internal/api"
	apiMiddleware "github.com/llegomark/tasks-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. The protected /api/v1 chain runs in a fixed order: CORS
// (global), then auth, CSRF and rate limiting. A failing stage
// short-circuits the stages after it and the handler.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(app.config.CORS.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", apiMiddleware.CSRFTokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)
	csrfMiddleware := apiMiddleware.NewCSRFMiddleware(app.config.CORS.AllowedOrigins)
	rateLimiter := apiMiddleware.NewRateLimiter(
		app.limiterKV,
		app.config.RateLimit.Limit,
		time.Duration(app.config.RateLimit.WindowSeconds)*time.Second,
	)

	taskHandler := api.NewTaskHandler(app.tasks, app.logger)
	commentHandler := api.NewCommentHandler(app.tasks, app.comments, app.logger)

	// Register routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(csrfMiddleware.Protect)
		r.Use(rateLimiter.Limit)

		// Task endpoints
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)

		// Comment endpoints
		r.Post("/tasks/{id}/comments", commentHandler.CreateComment)
		r.Get("/tasks/{id}/comments", commentHandler.ListComments)
		r.Put("/tasks/{id}/comments/{commentId}", commentHandler.UpdateComment)
		r.Delete("/tasks/{id}/comments/{commentId}", commentHandler.DeleteComment)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

// allowedOrigins translates the config value for the CORS layer: an empty
// list means all origins.
func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
