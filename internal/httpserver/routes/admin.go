package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RequireAdmin(d.Guard, d.Logger))
		r.Use(timeout(d))

		r.Get("/session", handlers.AdminSession(d))
		r.Post("/jobs", handlers.CreateJob(d))
		r.Put("/jobs/{id}", handlers.UpdateJob(d))
		r.Delete("/jobs/{id}", handlers.DeleteJob(d))
		r.Post("/logos", handlers.UploadLogo(d))
		r.Post("/favicon", handlers.ResolveFavicon(d))
	})
}
