package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
)

const checkTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool     `json:"ready"`
	Failing []string `json:"failing,omitempty"`
}

// Readyz is ready when every backend check passes.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := runChecks(r.Context(), d.Checks)

		var failing []string
		for name, err := range results {
			if err != nil {
				failing = append(failing, name)
			}
		}
		sort.Strings(failing)

		status := http.StatusOK
		if len(failing) > 0 {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(w, status, readyzResponse{
			Ready:   len(failing) == 0,
			Failing: failing,
		})
	}
}

// runChecks runs every check concurrently, each under checkTimeout.
func runChecks(ctx context.Context, checks map[string]deps.Check) map[string]error {
	type result struct {
		name string
		err  error
	}
	ch := make(chan result, len(checks))
	for name, check := range checks {
		go func(name string, check deps.Check) {
			ctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			ch <- result{name: name, err: check(ctx)}
		}(name, check)
	}

	results := make(map[string]error, len(checks))
	for range checks {
		res := <-ch
		results[res.name] = res.err
	}
	return results
}
