package cache

import (
	"context"
	"time"
)

// nullCache discards writes and always misses. It stands in wherever the
// config disables caching, so callers never branch on a nil Cache.
type nullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (nullCache) Delete(context.Context, string) error { return nil }

func (nullCache) Close() error { return nil }
