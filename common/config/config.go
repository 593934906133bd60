package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Storage  StorageConfig
	Metadata MetadataConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Assets   AssetConfig
	Tools    ToolConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name            string
	Port            int
	Environment     string
	LogLevel        string
	LogFormat       string
	PprofPort       int // debug pprof listener, 0 disables
	RateLimitGlobal int // service-wide derivations per minute, 0 disables
	RateLimitClient int // per-client derivations per minute, 0 disables
}

// StorageConfig holds durable byte-storage settings
type StorageConfig struct {
	Root    string // filesystem root for cached assets
	BaseURL string // public URL prefix mapped onto Root
	Prefix  string // leading path segment for stored names
}

// MetadataConfig selects the metadata key-value backend
type MetadataConfig struct {
	Backend   string // "memory", "redis" or "postgres"
	Namespace string // key prefix shared by all cache entries
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// AssetConfig holds asset-resolution settings
type AssetConfig struct {
	// ForceSave controls whether Path/URL lookups materialize through the
	// cache by default. Disabled in development so edits show up without a
	// recompile.
	ForceSave     bool
	StaticRoots   []string // directories scanned by the static catalog
	StaticURL     string   // URL prefix identifying static references in stylesheets
	GroupManifest string   // optional path to a catalog group manifest
}

// ToolConfig holds external tool settings
type ToolConfig struct {
	FFmpegPath       string
	MinifierArgs     []string // argv of the local minifier, empty disables it
	MinifierURL      string   // remote minification service, empty disables it
	MinifierTimeout  time.Duration
	FailSilently     bool // default compile-failure policy for bundles
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Service: ServiceConfig{
			Name:            serviceName,
			Port:            getEnvInt("PORT", 8080),
			Environment:     environment,
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "text"),
			PprofPort:       getEnvInt("PPROF_PORT", 0),
			RateLimitGlobal: getEnvInt("RATE_LIMIT_GLOBAL", 0),
			RateLimitClient: getEnvInt("RATE_LIMIT_CLIENT", 0),
		},
		Storage: StorageConfig{
			Root:    getEnv("STORAGE_ROOT", "./data/assets"),
			BaseURL: getEnv("STORAGE_BASE_URL", "/media/"),
			Prefix:  getEnv("STORAGE_PREFIX", "assets"),
		},
		Metadata: MetadataConfig{
			Backend:   getEnv("METADATA_BACKEND", "memory"),
			Namespace: getEnv("METADATA_NAMESPACE", "assetpipe"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "assetpipe"),
			User:        getEnv("POSTGRES_USER", "assetpipe"),
			Password:    getEnv("POSTGRES_PASSWORD", "assetpipe"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Assets: AssetConfig{
			ForceSave:     getEnvBool("ASSETS_FORCE_SAVE", environment != "development"),
			StaticRoots:   getEnvSlice("STATIC_ROOTS", []string{"./static"}),
			StaticURL:     getEnv("STATIC_URL", "/static/"),
			GroupManifest: getEnv("ASSET_GROUP_MANIFEST", ""),
		},
		Tools: ToolConfig{
			FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
			MinifierArgs:    getEnvSlice("MINIFIER_ARGS", nil),
			MinifierURL:     getEnv("MINIFIER_URL", ""),
			MinifierTimeout: getEnvDuration("MINIFIER_TIMEOUT", 10*time.Second),
			FailSilently:    getEnvBool("MINIFIER_FAIL_SILENTLY", false),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Storage.Root == "" {
		return fmt.Errorf("storage root is required")
	}

	if c.Storage.BaseURL == "" {
		return fmt.Errorf("storage base URL is required")
	}

	switch c.Metadata.Backend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown metadata backend: %s", c.Metadata.Backend)
	}

	if c.Metadata.Backend == "postgres" && c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
