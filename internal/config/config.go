package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	BackendRedis   = "redis"
	BackendMongoDB = "mongodb"
	BackendMemory  = "memory"
)

// Blob backends
const (
	BlobFilesystem = "filesystem"
	BlobGCS        = "gcs"
)

// Click beacons
const (
	BeaconLog    = "log"
	BeaconRedis  = "redis"
	BeaconSheets = "sheets"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout for non-streaming routes

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend       string        // "redis" | "mongodb" | "memory"; sessions follow the same backend
	SeedFile           string        // optional YAML with sample listings; empty = built-in set
	StreamPollInterval time.Duration // polling fallback for the live stream when the change feed fails (0 = off)

	// Admin access
	AdminEmails         []string      // case-sensitive allow-list
	AuthEnabled         bool          // false => no OIDC, admin API always unauthorized
	SessionTTL          time.Duration // admin session lifetime cap
	SignInTTL           time.Duration // max time between /auth/login and /auth/callback
	CookieSecure        bool          // Secure attribute on the session cookie
	SessionReapInterval time.Duration // memory session store cleanup interval

	// Logos
	BlobBackend         string // "filesystem" | "gcs"
	UploadDir           string // filesystem backend root
	GCSBucket           string
	GCSCredentialsFile  string
	GCSPublicURL        string
	FaviconProbeTimeout time.Duration

	// Click-through analytics
	Beacons               []string // any of "log", "redis", "sheets"
	UTMSource             string
	SheetsSpreadsheetID   string
	SheetsRange           string
	SheetsCredentialsFile string
	ClickBurst            int // token bucket size per client IP on /go/{id}
	ClickRefillPerMin     int

	// Redis
	RedisURL              string        // optional redis:// URL, overrides the fields below
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	CORSOrigins  []string // optional, origins allowed to call /api
	AllowedHosts []string // optional, restrict admin and auth routes to specific Host headers
	AllowedCIDRS []string // optional, restrict healthz/readyz/infra to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// NeedsRedis reports whether any component talks to Redis.
func (c *Config) NeedsRedis() bool {
	if c.StoreBackend == BackendRedis {
		return true
	}
	for _, b := range c.Beacons {
		if b == BeaconRedis {
			return true
		}
	}
	return false
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("JOBBOARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("JOBBOARD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("JOBBOARD_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("JOBBOARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("JOBBOARD_PRETTY_LOG", true),

		// Listings
		StoreBackend:       strings.ToLower(getenv("JOBBOARD_STORE_BACKEND", BackendRedis)),
		SeedFile:           getenv("JOBBOARD_SEED_FILE", ""),
		StreamPollInterval: mustDuration("JOBBOARD_STREAM_POLL_INTERVAL", 30*time.Second),

		// Admin access
		AdminEmails:         requireEnvSlice("JOBBOARD_ADMIN_EMAILS"),
		AuthEnabled:         mustBool("JOBBOARD_AUTH_ENABLED", true),
		SessionTTL:          mustDuration("JOBBOARD_SESSION_TTL", 12*time.Hour),
		SignInTTL:           mustDuration("JOBBOARD_SIGNIN_TTL", 10*time.Minute),
		CookieSecure:        mustBool("JOBBOARD_COOKIE_SECURE", true),
		SessionReapInterval: mustDuration("JOBBOARD_SESSION_REAP_INTERVAL", 10*time.Minute),

		// Logos
		BlobBackend:         strings.ToLower(getenv("JOBBOARD_BLOB_BACKEND", BlobFilesystem)),
		UploadDir:           getenv("JOBBOARD_UPLOAD_DIR", "./uploads"),
		GCSBucket:           getenv("JOBBOARD_GCS_BUCKET", ""),
		GCSCredentialsFile:  getenv("JOBBOARD_GCS_CREDENTIALS_FILE", ""),
		GCSPublicURL:        getenv("JOBBOARD_GCS_PUBLIC_URL", ""),
		FaviconProbeTimeout: mustDuration("JOBBOARD_FAVICON_TIMEOUT", 5*time.Second),

		// Analytics
		Beacons:               splitAndTrim(strings.ToLower(getenv("JOBBOARD_BEACONS", BeaconLog))),
		UTMSource:             getenv("JOBBOARD_UTM_SOURCE", "jobboard"),
		SheetsSpreadsheetID:   getenv("JOBBOARD_SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:           getenv("JOBBOARD_SHEETS_RANGE", "clicks!A:G"),
		SheetsCredentialsFile: getenv("JOBBOARD_SHEETS_CREDENTIALS_FILE", ""),
		ClickBurst:            mustInt("JOBBOARD_CLICK_BURST", 20),
		ClickRefillPerMin:     mustInt("JOBBOARD_CLICK_REFILL_PER_MIN", 60),

		// Redis settings
		RedisURL:              getenv("JOBBOARD_REDIS_URL", ""),
		RedisAddr:             getenv("JOBBOARD_REDIS_ADDR", ""),
		RedisUser:             getenv("JOBBOARD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("JOBBOARD_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("JOBBOARD_REDIS_PASSWORD", ""),
		RedisDB:               mustInt("JOBBOARD_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         mustInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    mustInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		CORSOrigins:  splitAndTrim(getenv("JOBBOARD_CORS_ORIGINS", "")),
		AllowedHosts: splitAndTrim(getenv("JOBBOARD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("JOBBOARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("JOBBOARD_TRUST_PROXY", true),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisURL != "" {
			cfgCopy.RedisURL = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendRedis, BackendMongoDB, BackendMemory:
	default:
		return fmt.Errorf("JOBBOARD_STORE_BACKEND must be one of redis, mongodb, memory, got %q", c.StoreBackend)
	}

	switch c.BlobBackend {
	case BlobFilesystem:
	case BlobGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("JOBBOARD_GCS_BUCKET is required when JOBBOARD_BLOB_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("JOBBOARD_BLOB_BACKEND must be one of filesystem, gcs, got %q", c.BlobBackend)
	}

	for _, b := range c.Beacons {
		switch b {
		case BeaconLog, BeaconRedis:
		case BeaconSheets:
			if c.SheetsSpreadsheetID == "" {
				return fmt.Errorf("JOBBOARD_SHEETS_SPREADSHEET_ID is required for the sheets beacon")
			}
		default:
			return fmt.Errorf("unknown beacon %q in JOBBOARD_BEACONS", b)
		}
	}

	if c.NeedsRedis() && c.RedisURL == "" && c.RedisAddr == "" {
		return fmt.Errorf("JOBBOARD_REDIS_ADDR or JOBBOARD_REDIS_URL is required for the redis backend or beacon")
	}
	if c.RedisPasswordRequired && c.RedisPassword == "" && c.RedisURL == "" {
		return fmt.Errorf("JOBBOARD_REDIS_PASSWORD is required when JOBBOARD_REDIS_PASSWORD_REQUIRED=true")
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvSlice(key string) []string {
	parts := splitAndTrim(requireEnv(key))
	if len(parts) == 0 {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is empty", key))
	}
	return parts
}

// The must* helpers return def when key is unset and panic on a malformed
// value, so a typo never silently becomes the default.
func mustInt(key string, def int) int {
	return mustParse(key, def, strconv.Atoi)
}

func mustBool(key string, def bool) bool {
	return mustParse(key, def, strconv.ParseBool)
}

func mustDuration(key string, def time.Duration) time.Duration {
	return mustParse(key, def, time.ParseDuration)
}

func mustParse[T any](key string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid value %q for %s: %v", v, key, err))
	}
	return parsed
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
