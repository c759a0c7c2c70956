// Package cache provides the byte-level caches used by the treemap pipeline.
//
// Layouts and rendered artifacts are expensive enough to reuse across CLI
// runs and HTTP requests. Keys are derived by a [Keyer] from a hash of the
// inputs plus every option that influences the output, so a cached entry is
// never served for a different request.
//
// Three backends are available:
//   - [FileCache] for the CLI (entries under the XDG cache directory)
//   - [RedisCache] for shared server deployments
//   - [NullCache] when caching is disabled
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value for key. hit is false when the key is absent or
	// expired; err is only set for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default lifetimes for cached values.
const (
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
