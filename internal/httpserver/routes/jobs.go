package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/handlers"
)

func init() { Register(registerJobs) }

func registerJobs(r chi.Router, d deps.Deps) {
	r.With(timeout(d)).Get("/api/jobs", handlers.ListJobs(d))
	// Long-lived; no request timeout.
	r.Get("/api/jobs/stream", handlers.StreamJobs(d))
}
