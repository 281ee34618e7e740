// Package cache stores loaded feature sets, computed layouts and rendered
// artifacts behind a small byte-oriented [Cache] interface.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// the HTTP server, and [NullCache] when caching is disabled. Keys are built
// by a [Keyer] so that callers never format cache keys by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Entry lifetimes per pipeline stage.
const (
	TTLFeatures = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
