// Package postgres provides a PostgreSQL-backed cache.Store. It uses
// pgx/v5 for connection pooling and JSONB for result storage, so a
// cache can be shared across processes.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blazorly/aisdk-go/pkg/api"
	"github.com/blazorly/aisdk-go/pkg/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS aisdk_generation_cache (
	key        TEXT PRIMARY KEY,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ
)`

// Store is a PostgreSQL-backed cache.Store.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// Ensure Store implements cache.Store at compile time.
var _ cache.Store = (*Store)(nil)

// New creates a PostgreSQL store, verifies connectivity, and ensures
// the cache table exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring cache table: %w", err)
	}

	return &Store{pool: pool, ttl: cfg.TTL}, nil
}

// Get returns the stored result for key. Expired entries are removed
// and reported as misses.
func (s *Store) Get(ctx context.Context, key string) (*api.Result, error) {
	var resultJSON []byte
	var expiresAt *time.Time

	err := s.pool.QueryRow(ctx,
		"SELECT result, expires_at FROM aisdk_generation_cache WHERE key = $1",
		key,
	).Scan(&resultJSON, &expiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache entry: %w", err)
	}

	if expiresAt != nil && time.Now().After(*expiresAt) {
		// Best effort: a failed cleanup still reads as a miss.
		s.pool.Exec(ctx, "DELETE FROM aisdk_generation_cache WHERE key = $1", key)
		return nil, cache.ErrCacheMiss
	}

	var result api.Result
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling cached result: %w", err)
	}
	return &result, nil
}

// Set stores result under key, replacing any existing entry and
// refreshing its expiry.
func (s *Store) Set(ctx context.Context, key string, result *api.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO aisdk_generation_cache (key, result, created_at, expires_at)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (key) DO UPDATE
		SET result = EXCLUDED.result, created_at = now(), expires_at = EXCLUDED.expires_at
	`, key, resultJSON, expiresAt)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Absent keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM aisdk_generation_cache WHERE key = $1", key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
