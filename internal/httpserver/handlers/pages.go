package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/jobboard/internal/analytics"
	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/web"
)

// Index renders the public listing page. The page keeps itself current
// through /api/jobs/stream.
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := web.IndexView{}
		status := http.StatusOK

		jobs, err := d.Jobs.List(r.Context())
		if err != nil {
			var body respond.ErrorBody
			status, body = respond.Status(err)
			view.Error = body.Message
		}
		view.Jobs = jobs

		renderPage(w, d, status, web.PageIndex, view)
	}
}

// Admin renders the admin console shell. Access is enforced by the API it calls.
func Admin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, d, http.StatusOK, web.PageAdmin, nil)
	}
}

// GoToJob is the click-through for a listing. Listings with an apply link
// are redirected there with tracking parameters and a click event; the
// others get an informational page naming the position and company.
func GoToJob(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := d.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			var nf *domain.ErrNotFound
			if errors.As(err, &nf) {
				http.NotFound(w, r)
				return
			}
			status, body := respond.Status(err)
			http.Error(w, body.Message, status)
			return
		}

		if !job.Navigable() {
			renderPage(w, d, http.StatusOK, web.PageInfo, web.InfoView{Job: job})
			return
		}

		destination := analytics.AddTrackingParams(job.ApplyURL, job, d.UTMSource)
		// Recorded in the background, detached from the request.
		event := analytics.NewClickEvent(job, destination, d.UTMSource, d.Now())
		go analytics.Fire(context.WithoutCancel(r.Context()), d.Beacon, event, d.Logger)

		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, destination, http.StatusFound)
	}
}

func renderPage(w http.ResponseWriter, d deps.Deps, status int, page string, data any) {
	var buf bytes.Buffer
	if err := d.Pages.Render(&buf, page, data); err != nil {
		d.Logger.Error("failed to render page",
			logger.String("page", page),
			logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
