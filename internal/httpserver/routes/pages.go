package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/mw"
	"github.com/MrSnakeDoc/jobboard/internal/web"
)

func init() { Register(registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	r.With(timeout(d)).Get("/", handlers.Index(d))
	r.With(timeout(d), mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/admin", handlers.Admin(d))

	r.With(
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.ClickBurst,
			RefillPerMin: d.ClickRefillPerMin,
			MaxEntries:   10000,
			TrustProxy:   d.TrustProxy,
			Now:          d.TimeNow,
			Logger:       d.Logger,
		}),
		timeout(d),
	).Get("/go/{id}", handlers.GoToJob(d))

	assets := http.FileServer(http.FS(web.Static()))
	r.Handle("/static/*", http.StripPrefix("/static", assets))
	r.Handle("/logos/*", assets)

	if d.UploadRoot != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadRoot))))
	}
}
