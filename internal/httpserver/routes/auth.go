package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	sub := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), timeout(d))
	sub.Get("/auth/login", handlers.Login(d))
	sub.Get(auth.CallbackPath, handlers.Callback(d))
	sub.Post("/auth/logout", handlers.Logout(d))
}
