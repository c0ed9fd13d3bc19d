// Package config loads the kintree configuration from a TOML file with
// environment-variable overrides for secrets.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/kintreehq/kintree/pkg/layout"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig   `toml:"server"`
	Store   StoreConfig    `toml:"store"`
	Cache   CacheConfig    `toml:"cache"`
	Photos  PhotosConfig   `toml:"photos"`
	Layout  layout.Options `toml:"layout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the graph store backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is "none", "file", or "redis".
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"` // file backend
	RedisAddr string `toml:"redis_addr"`
	RedisPass string `toml:"redis_pass"`
	RedisDB   int    `toml:"redis_db"`
	TTLSecs   int    `toml:"ttl_secs"`
}

// PhotosConfig configures the photo blob store. An empty bucket disables
// uploads; the gallery then serves metadata only.
type PhotosConfig struct {
	Bucket          string `toml:"bucket"`
	CredentialsPath string `toml:"credentials_path"`
}

// Default returns the configuration used when no file is given: in-memory
// store, no cache, no photo bucket.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Backend: "memory", Database: "kintree"},
		Cache:  CacheConfig{Backend: "none", TTLSecs: 300},
		Layout: layout.DefaultOptions(),
	}
}

// Load reads a TOML config file over the defaults, then applies environment
// overrides. An empty path skips the file and returns defaults+env.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides secrets and endpoints from the environment, so config
// files never need to carry credentials.
func applyEnv(cfg *Config) {
	if v := os.Getenv("KINTREE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("KINTREE_MONGO_URI"); v != "" {
		cfg.Store.MongoURI = v
		cfg.Store.Backend = "mongo"
	}
	if v := os.Getenv("KINTREE_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Backend = "redis"
	}
	if v := os.Getenv("KINTREE_REDIS_PASS"); v != "" {
		cfg.Cache.RedisPass = v
	}
	if v := os.Getenv("KINTREE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = db
		}
	}
	if v := os.Getenv("KINTREE_PHOTO_BUCKET"); v != "" {
		cfg.Photos.Bucket = v
	}
	if v := os.Getenv("KINTREE_GCS_CREDENTIALS"); v != "" {
		cfg.Photos.CredentialsPath = v
	}
}
