package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jobboard/internal/config"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/jobs"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/redis"
	"github.com/MrSnakeDoc/jobboard/internal/scheduler"
	"github.com/MrSnakeDoc/jobboard/internal/seed"
	"github.com/MrSnakeDoc/jobboard/internal/utils"
	"github.com/MrSnakeDoc/jobboard/internal/version"
	"github.com/MrSnakeDoc/jobboard/internal/web"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	server  *httpserver.Server
	jobs    *jobs.Service
	reaper  *scheduler.SessionReaper
	closers []utils.Closer
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	ctx := context.Background()

	a := &App{cfg: cfg, logger: loggerClient}

	// Initialize Redis early - fail fast if unavailable
	var redisClient *goredis.Client
	if cfg.NeedsRedis() {
		loggerClient.Info("connecting to redis", logger.String("addr", redisTarget(cfg)))
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			URL:            cfg.RedisURL,
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
		redisClient = client
		a.closers = append(a.closers, utils.Closer{
			Name:  "redis",
			Close: func(context.Context) error { return client.Close() },
		})
	}

	checks := map[string]deps.Check{}

	backend, err := newBackend(ctx, cfg, redisClient, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	if backend.close != nil {
		a.closers = append(a.closers, utils.Closer{Name: cfg.StoreBackend, Close: backend.close})
	}
	if backend.check != nil {
		checks["store"] = backend.check
	}
	if backend.reaper != nil {
		a.reaper = scheduler.NewSessionReaper(backend.reaper, loggerClient.Named("reaper"), cfg.SessionReapInterval)
	}

	samples, err := seed.Resolve(cfg.SeedFile)
	if err != nil {
		loggerClient.Errorf("Failed to load seed file %s: %v", cfg.SeedFile, err)
		os.Exit(1)
	}

	blobs, err := newBlobs(ctx, cfg)
	if err != nil {
		loggerClient.Errorf("Failed to initialize %s blob store: %v", cfg.BlobBackend, err)
		os.Exit(1)
	}
	checks["blobs"] = blobs.check

	service := jobs.NewService(backend.jobs, blobs.store, samples, loggerClient.Named("jobs"))
	a.jobs = service

	beacon, eventsCheck, err := newBeacon(ctx, cfg, redisClient, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize click beacons: %v", err)
		os.Exit(1)
	}
	if eventsCheck != nil {
		checks["events"] = eventsCheck
	}

	guard, err := newGuard(ctx, cfg, backend.sessions, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to initialize admin sign-in: %v", err)
		os.Exit(1)
	}

	pages, err := web.NewRenderer()
	if err != nil {
		loggerClient.Errorf("Failed to parse page templates: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:             loggerClient,
		StartTime:          time.Now(),
		Version:            version.Version,
		Commit:             version.Commit,
		BuildDate:          version.BuildDate,
		GoVersion:          version.GoVersion,
		TimeNow:            time.Now,
		AllowedHosts:       cfg.AllowedHosts,
		AllowedCIDRS:       cfg.AllowedCIDRS,
		TrustProxy:         cfg.TrustProxy,
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		StoreBackend:       cfg.StoreBackend,
		Jobs:               service,
		Guard:              guard,
		CookieSecure:       cfg.CookieSecure,
		Blobs:              blobs.store,
		UploadRoot:         blobs.root,
		Favicons:           newFavicons(cfg, redisClient, loggerClient),
		Beacon:             beacon,
		UTMSource:          cfg.UTMSource,
		ClickBurst:         cfg.ClickBurst,
		ClickRefillPerMin:  cfg.ClickRefillPerMin,
		StreamPollInterval: cfg.StreamPollInterval,
		Pages:              pages,
		Checks:             checks,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Job Board v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Job Board %s", version.String())

	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// List retries the seed when this fails.
	seedCtx, cancelSeed := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	if seeded, err := a.jobs.EnsureSeeded(seedCtx); err != nil {
		a.logger.Warn("failed to seed sample listings, will retry on first page load", logger.Error(err))
	} else if seeded {
		a.logger.Info("sample listings seeded")
	}
	cancelSeed()

	if a.reaper != nil {
		if err := a.reaper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start session reaper: %w", err)
		}
		a.logger.Info("session reaper started",
			logger.Duration("interval", a.cfg.SessionReapInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reaper != nil {
		a.reaper.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseAll(shutdownCtx, a.logger, a.closers)

	a.logger.Info("✅ Job Board stopped cleanly")
	return nil
}

func redisTarget(cfg *config.Config) string {
	if cfg.RedisURL != "" {
		return "(url)"
	}
	return cfg.RedisAddr
}
