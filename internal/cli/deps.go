package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/blob"
	"github.com/kintreehq/kintree/pkg/cache"
	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/store"
)

// openStore builds the graph store selected by the config.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (family.Store, error) {
	switch cfg.Backend {
	case "mongo":
		logger.Debug("connecting to mongodb", "uri", cfg.MongoURI, "db", cfg.Database)
		return store.ConnectMongo(ctx, cfg.MongoURI, cfg.Database)
	default:
		logger.Debug("using in-memory store")
		return store.NewMemory(), nil
	}
}

// openCache builds the cache selected by the config. A Redis connection
// failure degrades to no caching rather than failing startup.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	switch cfg.Backend {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return c
	case "file":
		c, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "err", err)
			return cache.NewNullCache()
		}
		return c
	default:
		return cache.NewNullCache()
	}
}

// openBlobs builds the photo blob store. Without a configured bucket the
// gallery degrades to an in-process store: uploads work for the session but
// do not persist.
func openBlobs(ctx context.Context, cfg config.PhotosConfig, logger *log.Logger) blob.Store {
	if cfg.Bucket == "" {
		logger.Debug("no photo bucket configured, using in-memory blob store")
		return blob.NewMemory()
	}
	g, err := blob.NewGCS(ctx, cfg.Bucket, cfg.CredentialsPath)
	if err != nil {
		logger.Warn("photo storage unavailable, uploads will not persist", "err", err)
		return blob.NewMemory()
	}
	return g
}
