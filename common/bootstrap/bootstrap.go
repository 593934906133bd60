package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/staticbay/assetpipe/common/cache"
	"github.com/staticbay/assetpipe/common/config"
	"github.com/staticbay/assetpipe/common/db"
	"github.com/staticbay/assetpipe/common/logger"
	"github.com/staticbay/assetpipe/common/metastore"
	"github.com/staticbay/assetpipe/common/redis"
	"github.com/staticbay/assetpipe/common/storage"
)

// Setup initializes all service components
// This is the main entry point for all services
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize durable storage (if not skipped)
	if !options.skipStorage {
		components.Logger.Info("initializing storage",
			"root", components.Config.Storage.Root,
		)
		components.Storage, err = storage.NewLocal(
			components.Config.Storage.Root,
			components.Config.Storage.BaseURL,
			components.Logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	// 4. Initialize the in-process name memo (if not skipped)
	if !options.skipMemo {
		memo := cache.NewMemoryCache(components.Logger)
		components.Memo = memo
		components.addCleanup(func() error {
			components.Logger.Info("closing name memo")
			return memo.Close()
		})
	}

	// 5. Initialize the metadata store backend (if not skipped)
	if !options.skipMeta {
		components.Logger.Info("initializing metadata store",
			"backend", components.Config.Metadata.Backend,
		)
		if err := setupMetaStore(ctx, components, options); err != nil {
			components.Shutdown(ctx) // Cleanup what we've initialized
			return nil, err
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"storage", components.Storage != nil,
		"meta", components.Meta != nil,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
	)

	return components, nil
}

func setupMetaStore(ctx context.Context, components *Components, options *options) error {
	cfg := components.Config
	namespace := cfg.Metadata.Namespace

	switch cfg.Metadata.Backend {
	case "memory":
		backing := cache.NewMemoryCache(components.Logger)
		components.addCleanup(func() error {
			return backing.Close()
		})
		components.Meta = metastore.NewMemory(backing, namespace)

	case "redis":
		raw := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		components.Redis = redis.NewClient(raw, components.Logger)

		if err := components.Redis.Ping(ctx); err != nil {
			raw.Close()
			components.Redis = nil
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		components.addCleanup(func() error {
			components.Logger.Info("closing redis connection")
			return raw.Close()
		})
		components.Meta = metastore.NewRedis(components.Redis, namespace)

	case "postgres":
		database, err := db.New(ctx, cfg, components.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		components.DB = database
		components.addCleanup(func() error {
			components.Logger.Info("closing database connection")
			database.Close()
			return nil
		})

		store := metastore.NewPostgres(database)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure metadata schema: %w", err)
		}

		// Run DB init hook if provided
		if options.dbInitHook != nil {
			components.Logger.Info("running database init hook")
			if err := options.dbInitHook(database); err != nil {
				return fmt.Errorf("database init hook failed: %w", err)
			}
		}
		components.Meta = store

	default:
		return fmt.Errorf("unknown metadata backend: %s", cfg.Metadata.Backend)
	}

	return nil
}

// MustSetup is like Setup but panics on error
// Useful for services that can't recover from initialization failure
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
