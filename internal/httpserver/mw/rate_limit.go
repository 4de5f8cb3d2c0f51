package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/jobboard/internal/httpserver/respond"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/utils"
)

// RateLimitConfig configures a per-client token bucket.
type RateLimitConfig struct {
	Burst        int           // requests a client may make at once
	RefillPerMin int           // sustained requests per minute per client
	MaxEntries   int           // client table size that triggers eviction of idle clients
	IdleTTL      time.Duration // idle time after which a client's bucket is dropped
	TrustProxy   bool          // resolve IP from proxy headers when true
	Now          func() time.Time
	Logger       logger.Logger // optional, logs rejected clients at debug level
}

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	every     rate.Limit
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerMin < 1 {
		cfg.RefillPerMin = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		every:     rate.Every(time.Minute / time.Duration(cfg.RefillPerMin)),
		clients:   make(map[string]*client, 1024),
		lastSweep: cfg.Now(),
	}
}

// take spends one token for key. A positive wait means the request is refused
// and no token was spent.
func (l *limiter) take(key string, now time.Time) (remaining int, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if full || now.Sub(l.lastSweep) >= l.cfg.IdleTTL {
		l.evictIdle(now)
	}

	c := l.clients[key]
	if c == nil {
		c = &client{limiter: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.clients[key] = c
	}
	c.seen = now

	res := c.limiter.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return 0, d
	}
	return int(c.limiter.TokensAt(now)), 0
}

func (l *limiter) evictIdle(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.seen) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit refuses clients that exceed their bucket with 429 and Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, l.cfg.TrustProxy)
			remaining, wait := l.take(key, l.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if wait > 0 {
				if l.cfg.Logger != nil {
					l.cfg.Logger.Debug("rate limited",
						logger.String("client_ip", key),
						logger.String("path", r.URL.Path),
						logger.Duration("retry_after", wait))
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{Message: "too many requests"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
