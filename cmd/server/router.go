package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/boardgen-api/internal/api"
	apiMiddleware "github.com/phrazzld/boardgen-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	explainHandler := api.NewExplainHandler(app.explainService, app.logger)
	mcqHandler := api.NewMcqHandler(app.mcqService, app.logger)
	catalogHandler := api.NewCatalogHandler(app.catalogService, app.logger)
	healthHandler := api.NewHealthHandler(func(ctx context.Context) error {
		return app.db.PingContext(ctx)
	}, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		// Read-only catalog endpoints (public)
		r.Get("/subjects", catalogHandler.ListSubjects)
		r.Get("/topics", catalogHandler.ListTopics)

		// Operator routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/explain", func(r chi.Router) {
				r.Post("/topic", explainHandler.StartTopic)
				r.Post("/all", explainHandler.StartAll)
				r.Post("/subject", explainHandler.StartSubject)
				r.Get("/tasks/{id}", explainHandler.GetTask)
				r.Post("/tasks/{id}/cancel", explainHandler.CancelTask)
				r.Get("/counts/topic", catalogHandler.CountTopic)
				r.Get("/counts/subject", catalogHandler.CountSubject)
				r.Get("/counts/all", catalogHandler.CountAll)
			})

			r.Route("/mcq", func(r chi.Router) {
				r.Post("/upload", mcqHandler.Upload)
				r.Get("/tasks/{id}", mcqHandler.GetTask)
				r.Post("/tasks/{id}/cancel", mcqHandler.CancelTask)
			})
		})
	})

	r.Get("/health", healthHandler.Check)

	return r
}
