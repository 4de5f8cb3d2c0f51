package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
)

// storeCheck is the check name of the job store backend.
const storeCheck = "store"

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{}
		for name, err := range runChecks(r.Context(), d.Checks) {
			status := componentStatus{OK: err == nil}
			if err != nil {
				status.Error = err.Error()
				status.Impact = impactOf(name)
			}
			if name == storeCheck {
				status.Mode = d.StoreBackend
			}
			components[name] = status
		}

		authStatus := componentStatus{OK: true, Mode: "oidc"}
		if d.Guard == nil {
			authStatus = componentStatus{OK: true, Mode: "disabled", Impact: "admin-console-unavailable"}
		}
		components["auth"] = authStatus

		streamMode := "change-feed"
		if d.StreamPollInterval > 0 {
			streamMode = "change-feed+polling-fallback"
		}
		components["stream"] = componentStatus{OK: true, Mode: streamMode}

		respond.JSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if store, exists := components[storeCheck]; exists && !store.OK {
		return "critical" // no listings without the store
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func impactOf(name string) string {
	switch name {
	case storeCheck:
		return "listings-unavailable"
	case "events":
		return "click-events-dropped"
	case "blobs":
		return "logo-uploads-failing"
	default:
		return "degraded"
	}
}
