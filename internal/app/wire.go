package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jobboard/internal/analytics"
	"github.com/MrSnakeDoc/jobboard/internal/auth"
	"github.com/MrSnakeDoc/jobboard/internal/blob"
	"github.com/MrSnakeDoc/jobboard/internal/config"
	"github.com/MrSnakeDoc/jobboard/internal/favicon"
	"github.com/MrSnakeDoc/jobboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jobboard/internal/jobs"
	"github.com/MrSnakeDoc/jobboard/internal/logger"
	"github.com/MrSnakeDoc/jobboard/internal/scheduler"
	"github.com/MrSnakeDoc/jobboard/internal/store/memory"
	"github.com/MrSnakeDoc/jobboard/internal/store/mongodb"
	redisstore "github.com/MrSnakeDoc/jobboard/internal/store/redis"
)

// backend is the job and session storage chosen by JOBBOARD_STORE_BACKEND.
type backend struct {
	jobs     jobs.Store
	sessions auth.SessionStore
	reaper   scheduler.Reaper // only for stores without native expiry
	check    deps.Check
	close    func(ctx context.Context) error
}

func newBackend(ctx context.Context, cfg *config.Config, client *goredis.Client, log logger.Logger) (backend, error) {
	log = log.Named("store")
	switch cfg.StoreBackend {
	case config.BackendRedis:
		store := redisstore.NewStore(client, log)
		return backend{
			jobs:     store,
			sessions: redisstore.NewSessionStore(client),
			check:    store.Ping,
		}, nil

	case config.BackendMongoDB:
		mongoCfg, err := mongodb.ConfigFromEnvironment()
		if err != nil {
			return backend{}, err
		}
		db, err := mongodb.Database(ctx, mongoCfg)
		if err != nil {
			return backend{}, err
		}
		store, err := mongodb.NewJobStore(db, log)
		if err != nil {
			return backend{}, err
		}
		sessions, err := mongodb.NewSessionStore(db)
		if err != nil {
			return backend{}, err
		}
		log.Info("MongoDB initialized successfully", logger.String("database", mongoCfg.Database))
		return backend{
			jobs:     store,
			sessions: sessions,
			check:    func(ctx context.Context) error { return mongodb.CheckHealth(ctx, db) },
			close:    func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
		}, nil

	case config.BackendMemory:
		log.Warn("using the in-memory store, listings are lost on restart")
		sessions := memory.NewSessionStore()
		return backend{
			jobs:     memory.NewJobStore(),
			sessions: sessions,
			reaper:   sessions,
			check:    func(context.Context) error { return nil },
		}, nil
	}
	return backend{}, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// blobs is the logo store plus what the router and readiness probe need from it.
type blobs struct {
	store blob.Store
	root  string // served under /uploads/, empty for remote stores
	check deps.Check
}

func newBlobs(ctx context.Context, cfg *config.Config) (blobs, error) {
	if cfg.BlobBackend == config.BlobGCS {
		store, err := blob.NewGCSStore(ctx, blob.GCSConfig{
			Bucket:          cfg.GCSBucket,
			CredentialsPath: cfg.GCSCredentialsFile,
			PublicBaseURL:   cfg.GCSPublicURL,
		})
		if err != nil {
			return blobs{}, err
		}
		return blobs{store: store, check: store.Ping}, nil
	}

	store, err := blob.NewFileStore(cfg.UploadDir, blob.DefaultPublicPrefix)
	if err != nil {
		return blobs{}, err
	}
	return blobs{store: store, root: store.Root(), check: store.Ping}, nil
}

// newBeacon fans click events out to every configured sink. The returned
// check is non-nil when clicks land in the Redis event stream.
func newBeacon(ctx context.Context, cfg *config.Config, client *goredis.Client, log logger.Logger) (analytics.Beacon, deps.Check, error) {
	var (
		beacons analytics.Multi
		check   deps.Check
	)
	for _, name := range cfg.Beacons {
		switch name {
		case config.BeaconLog:
			beacons = append(beacons, analytics.NewLogBeacon(log.Named("clicks")))
		case config.BeaconRedis:
			events := redisstore.NewEventStream(client)
			beacons = append(beacons, analytics.NewStreamBeacon(events))
			check = func(ctx context.Context) error {
				_, err := events.Len(ctx)
				return err
			}
		case config.BeaconSheets:
			sheets, err := analytics.NewSheetsBeacon(ctx, analytics.SheetsConfig{
				SpreadsheetID:   cfg.SheetsSpreadsheetID,
				Range:           cfg.SheetsRange,
				CredentialsPath: cfg.SheetsCredentialsFile,
			})
			if err != nil {
				return nil, nil, err
			}
			beacons = append(beacons, sheets)
		default:
			return nil, nil, fmt.Errorf("unknown beacon %q", name)
		}
	}
	if len(beacons) == 0 {
		return nil, nil, nil
	}
	log.Info("click beacons enabled", logger.Strings("beacons", cfg.Beacons))
	return beacons, check, nil
}

// newGuard returns nil when admin sign-in is disabled.
func newGuard(ctx context.Context, cfg *config.Config, sessions auth.SessionStore, log logger.Logger) (*auth.Guard, error) {
	if !cfg.AuthEnabled {
		log.Warn("admin sign-in disabled, the admin API will refuse every request")
		return nil, nil
	}
	log = log.Named("auth")

	oidcCfg, err := auth.OIDCConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	provider, err := auth.NewOIDCProvider(ctx, oidcCfg)
	if err != nil {
		return nil, err
	}

	guard := auth.NewGuard(provider, sessions, auth.GuardOptions{
		AdminEmails: cfg.AdminEmails,
		SessionTTL:  cfg.SessionTTL,
		SignInTTL:   cfg.SignInTTL,
	}, log)
	guard.Observe(func(t auth.Transition) {
		log.Info("admin session transition",
			logger.String("from", string(t.From)),
			logger.String("to", string(t.To)),
			logger.String("email", t.Email))
	})
	log.Info("admin sign-in enabled",
		logger.String("provider", oidcCfg.ProviderURL),
		logger.Int("admins", len(cfg.AdminEmails)))
	return guard, nil
}

func newFavicons(cfg *config.Config, client *goredis.Client, log logger.Logger) *favicon.Resolver {
	var cache favicon.Cache
	if client != nil {
		cache = redisstore.NewFaviconCache(client, redisstore.DefaultFaviconTTL)
	}
	return favicon.NewResolver(nil, cfg.FaviconProbeTimeout, cache, log.Named("favicon"))
}
