// Package cache provides byte caches for rendered quiz pages.
//
// A [Cache] stores opaque values under string keys with an optional TTL.
// Implementations:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: shared cache for multi-instance deployments
//
// Keys are derived by a [Keyer] from content hashes, so an entry never has
// to be invalidated: changing a quiz changes its hash and therefore its key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value cache.
type Cache interface {
	// Get returns the cached value and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default TTLs.
const (
	// TTLPage is how long a rendered viewer page is kept.
	TTLPage = 24 * time.Hour
)

// PageKeyOpts are the render options that distinguish cached pages of the
// same quiz.
type PageKeyOpts struct {
	Mode    string `json:"mode"`
	Version string `json:"version,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// PageKey returns the key of a rendered page for a quiz content hash.
	PageKey(quizHash string, opts PageKeyOpts) string
}

// DefaultKeyer is the unscoped Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PageKey implements Keyer.
func (DefaultKeyer) PageKey(quizHash string, opts PageKeyOpts) string {
	return hashKey("page", quizHash, opts)
}

// NullCache is a no-op cache used when page caching is disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
