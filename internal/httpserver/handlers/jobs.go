package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/realtime"
)

const defaultHeartbeat = 25 * time.Second

// ListJobs returns every listing newest first, seeding an empty store once.
func ListJobs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := d.Jobs.List(r.Context())
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		respond.JSON(w, http.StatusOK, jobs)
	}
}

// StreamJobs pushes a full snapshot as a server-sent "snapshot" event on
// connect and after every change, until the client goes away.
func StreamJobs(d deps.Deps) http.HandlerFunc {
	heartbeat := d.StreamHeartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Seeding failures are not fatal here; the stream still shows what the store has.
		if _, err := d.Jobs.EnsureSeeded(ctx); err != nil {
			d.Logger.Warn("stream opened without seeding", logger.Error(err))
		}

		// Only the latest snapshot matters to a slow client.
		snapshots := make(chan []domain.Job, 1)
		bridge := realtime.NewBridge(d.Jobs.Store(), d.Logger, d.StreamPollInterval)
		unsubscribe, err := bridge.Subscribe(func(jobs []domain.Job) {
			select {
			case <-snapshots:
			default:
			}
			snapshots <- jobs
		})
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		defer unsubscribe()

		rc := http.NewResponseController(w)
		// The server write timeout would cut the stream.
		_ = rc.SetWriteDeadline(time.Time{})

		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			d.Logger.Warn("streaming unsupported", logger.Error(err))
			return
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case jobs := <-snapshots:
				data, err := json.Marshal(jobs)
				if err != nil {
					d.Logger.Error("failed to encode snapshot", logger.Error(err))
					return
				}
				if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
