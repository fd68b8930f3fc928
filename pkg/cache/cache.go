// Package cache stores computed layouts so that an unchanged snapshot is not
// laid out twice.
//
// Layout is a pure function of the filtered graph and the layout options, so
// the cache key is a hash of both (see [Keyer]). Three backends are provided:
//
//   - [NullCache]: never stores anything; the default
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared storage for several dashboard instances
//
// All backends treat a miss as (nil, false, nil). Errors are reserved for
// backend failures, which callers should log and otherwise ignore.
package cache

import (
	"context"
	"time"
)

// DefaultLayoutTTL bounds how long a layout stays cached. Snapshots change
// every few seconds, so a short TTL keeps the store small.
const DefaultLayoutTTL = 10 * time.Minute

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
