package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadHostDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "")
	t.Setenv("UNIBASE_API_ADDR", "")
	t.Setenv("UNIBASE_STORE", "")
	t.Setenv("UNIBASE_TICK_EVERY", "")
	t.Setenv("UNIBASE_SAVE_DIR", dir)
	t.Setenv("UNIBASE_SQLITE_PATH", "")

	cfg, err := LoadHostFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TickEvery != time.Second || cfg.StoreDriver != StoreFile {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SaveKey != DefaultSaveKey {
		t.Fatalf("save key got %q", cfg.SaveKey)
	}
	if cfg.SQLitePath != filepath.Join(dir, "unibase.db") {
		t.Fatalf("sqlite path got %q", cfg.SQLitePath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("log level got %v", cfg.LogLevel)
	}
}

func TestLoadHostOverrides(t *testing.T) {
	t.Setenv("UNIBASE_SAVE_DIR", t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("UNIBASE_TICK_EVERY", "250ms")
	t.Setenv("UNIBASE_STORE", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("UNIBASE_LOG_LEVEL", "debug")
	t.Setenv("UNIBASE_WORKER_RUN_ONCE", "true")
	t.Setenv("UNIBASE_WORKER_TICKS", "60")

	cfg, err := LoadHostFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.TickEvery != 250*time.Millisecond || cfg.StoreDriver != StoreRedis {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug || !cfg.WorkerRunOnce || cfg.WorkerTicks != 60 {
		t.Fatalf("overrides not applied %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := HostConfig{TickEvery: time.Second, StoreDriver: StoreFile, SaveKey: DefaultSaveKey, WorkerTicks: 1}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*HostConfig)
	}{
		{name: "zero tick", mutate: func(c *HostConfig) { c.TickEvery = 0 }},
		{name: "postgres without url", mutate: func(c *HostConfig) { c.StoreDriver = StorePostgres }},
		{name: "redis without url", mutate: func(c *HostConfig) { c.StoreDriver = StoreRedis }},
		{name: "unknown driver", mutate: func(c *HostConfig) { c.StoreDriver = "s3" }},
		{name: "empty key", mutate: func(c *HostConfig) { c.SaveKey = "" }},
		{name: "no worker ticks", mutate: func(c *HostConfig) { c.WorkerTicks = 0 }},
	}
	for _, tc := range tests {
		cfg := base
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	t.Setenv("UB_API_BASE_URL", "http://example.test:8080/")
	if got := LoadCLIFromEnv().APIBaseURL; got != "http://example.test:8080" {
		t.Fatalf("got %q", got)
	}
}
