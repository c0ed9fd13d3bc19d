package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("got addr %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("got store backend %q, want memory", cfg.Store.Backend)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("got cache backend %q, want none", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kintree.toml")
	data := `
[server]
addr = ":9090"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[layout]
rank_sep = 200.0
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("got addr %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "mongo" {
		t.Errorf("got backend %q, want mongo", cfg.Store.Backend)
	}
	if cfg.Layout.RankSep != 200 {
		t.Errorf("got rank_sep %v, want 200", cfg.Layout.RankSep)
	}
	// Values absent from the file keep their defaults.
	if cfg.Store.Database != "kintree" {
		t.Errorf("got database %q, want default", cfg.Store.Database)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load("/does/not/exist.toml"); err == nil {
		t.Error("missing config file must fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KINTREE_MONGO_URI", "mongodb://db:27017")
	t.Setenv("KINTREE_REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("mongo env override not applied: %+v", cfg.Store)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("redis env override not applied: %+v", cfg.Cache)
	}
}
