// Package cache provides byte-level caching for expensive derived data:
// tree snapshots, layouts, and rendered SVGs. Backends share one small
// interface so the server can run against Redis and the CLI against a
// local file cache or nothing at all.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTLs.
// A miss is not an error: Get returns found=false.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
