// Package cache defines the storage contract behind the caching
// middleware. A Store maps request keys to completed generation
// results. Implementations live in the memory and postgres
// subpackages.
package cache

import (
	"context"
	"errors"

	"github.com/blazorly/aisdk-go/pkg/api"
)

// ErrCacheMiss is returned by Get when no live entry exists for the key.
var ErrCacheMiss = errors.New("cache entry not found")

// Store persists generation results under opaque string keys.
type Store interface {
	// Get returns the stored result for key, or ErrCacheMiss when the
	// key is absent or its entry has expired.
	Get(ctx context.Context, key string) (*api.Result, error)

	// Set stores result under key, replacing any existing entry.
	Set(ctx context.Context, key string, result *api.Result) error

	// Delete removes the entry for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
