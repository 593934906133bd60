package metastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/staticbay/assetpipe/common/db"
)

// Schema creates the asset_meta table. Run once at startup via the
// bootstrap DB init hook.
const Schema = `
CREATE TABLE IF NOT EXISTS asset_meta (
	cache_key  TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

// Postgres is a durable metadata store that survives process restarts.
type Postgres struct {
	db *db.DB
}

// NewPostgres creates a Postgres-backed metadata store
func NewPostgres(database *db.DB) *Postgres {
	return &Postgres{db: database}
}

// EnsureSchema creates the backing table if it does not exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create asset_meta table: %w", err)
	}
	return nil
}

// Get retrieves a metadata entry
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT value FROM asset_meta WHERE cache_key = $1`

	var value []byte
	err := p.db.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get metadata %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a metadata entry. Entries are write-once by construction, so
// a concurrent duplicate insert is dropped rather than treated as a conflict.
func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO asset_meta (cache_key, value)
		VALUES ($1, $2)
		ON CONFLICT (cache_key) DO NOTHING
	`

	if _, err := p.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}
