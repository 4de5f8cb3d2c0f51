package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/analytics"
	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/blob"
	"github.com/MrSnakeDoc/jobboard/internal/favicon"
	"github.com/MrSnakeDoc/jobboard/internal/jobs"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/web"
)

// Check reports whether a backend is reachable.
type Check func(ctx context.Context) error

type Deps struct {
	Logger             logger.Logger
	StartTime          time.Time
	Version            string
	Commit             string
	BuildDate          string
	GoVersion          string
	TimeNow            func() time.Time  // for testing, defaults to time.Now
	AllowedHosts       []string          // Host headers allowed to reach admin and auth routes
	AllowedCIDRS       []string          // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy         bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins        []string          // origins allowed to call the API cross-site; empty disables CORS
	RequestTimeout     time.Duration     // per-request timeout, not applied to the live stream
	StoreBackend       string            // reported by /infra
	Jobs               *jobs.Service     // job listings
	Guard              *auth.Guard       // nil when admin sign-in is disabled
	CookieSecure       bool              // Secure attribute on the session cookie
	Blobs              blob.Store        // logo uploads
	UploadRoot         string            // served under /uploads/ when the filesystem blob store is used
	Favicons           *favicon.Resolver // favicon derivation for the admin form
	Beacon             analytics.Beacon  // click-through events, may be nil
	UTMSource          string            // utm_source and ref on outbound links
	ClickBurst         int               // rate limit on /go/{id}
	ClickRefillPerMin  int               //
	StreamPollInterval time.Duration     // fallback polling for the live stream
	StreamHeartbeat    time.Duration     // comment frames keeping idle streams open
	Pages              *web.Renderer     // HTML templates
	Checks             map[string]Check  // backend probes for readyz/infra
}

// Now returns d.TimeNow() or time.Now() when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
