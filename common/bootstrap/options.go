package bootstrap

import (
	"github.com/staticbay/assetpipe/common/config"
	"github.com/staticbay/assetpipe/common/db"
	"github.com/staticbay/assetpipe/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	skipStorage  bool
	skipMeta     bool
	skipMemo     bool
	customLogger *logger.Logger
	customConfig *config.Config
	dbInitHook   func(*db.DB) error
}

// WithoutStorage skips durable storage initialization
func WithoutStorage() Option {
	return func(o *options) {
		o.skipStorage = true
	}
}

// WithoutMeta skips metadata store initialization, along with whatever
// backend connection it would have required.
func WithoutMeta() Option {
	return func(o *options) {
		o.skipMeta = true
	}
}

// WithoutMemo skips the in-process name memo
func WithoutMemo() Option {
	return func(o *options) {
		o.skipMemo = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithDBInitHook runs a custom function after DB initialization
// Useful for ensuring schema, seeding data, etc.
func WithDBInitHook(hook func(*db.DB) error) Option {
	return func(o *options) {
		o.dbInitHook = hook
	}
}

func defaultOptions() *options {
	return &options{
		skipStorage: false,
		skipMeta:    false,
		skipMemo:    false,
	}
}
