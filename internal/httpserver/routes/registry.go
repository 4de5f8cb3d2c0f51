package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

var registry []Registrar

// Register adds a route group. Route files call it from init.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every route group, in registration order. Called once from NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}

// timeout bounds non-streaming handlers by d.RequestTimeout.
func timeout(d deps.Deps) Middleware {
	if d.RequestTimeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(d.RequestTimeout)
}
