package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	DefaultSaveKey = "universal_base_app_save_v2"
)

type HostConfig struct {
	Addr           string
	TickEvery      time.Duration
	StoreDriver    string
	SaveKey        string
	SaveDir        string
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	DiscordToken   string
	DiscordChannel string
	LogLevel       slog.Level
	WorkerRunOnce  bool
	WorkerTicks    int
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadHostFromEnv() (HostConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("UNIBASE_API_ADDR", ":8080")
	}

	saveDir := strings.TrimSpace(os.Getenv("UNIBASE_SAVE_DIR"))
	if saveDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return HostConfig{}, fmt.Errorf("resolve home dir: %w", err)
		}
		saveDir = filepath.Join(home, ".unibase")
	}

	cfg := HostConfig{
		Addr:           addr,
		TickEvery:      envDurationDefault("UNIBASE_TICK_EVERY", time.Second),
		StoreDriver:    strings.ToLower(envDefault("UNIBASE_STORE", StoreFile)),
		SaveKey:        envDefault("UNIBASE_SAVE_KEY", DefaultSaveKey),
		SaveDir:        saveDir,
		SQLitePath:     envDefault("UNIBASE_SQLITE_PATH", filepath.Join(saveDir, "unibase.db")),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		DiscordToken:   strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")),
		DiscordChannel: strings.TrimSpace(os.Getenv("DISCORD_CHANNEL_ID")),
		LogLevel:       envLevelDefault("UNIBASE_LOG_LEVEL", slog.LevelInfo),
		WorkerRunOnce:  envBoolDefault("UNIBASE_WORKER_RUN_ONCE", false),
		WorkerTicks:    envIntDefault("UNIBASE_WORKER_TICKS", 1),
	}
	return cfg, cfg.Validate()
}

func (c HostConfig) Validate() error {
	if c.TickEvery <= 0 {
		return fmt.Errorf("UNIBASE_TICK_EVERY must be > 0")
	}
	switch c.StoreDriver {
	case StoreFile, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown UNIBASE_STORE %q", c.StoreDriver)
	}
	if c.SaveKey == "" {
		return fmt.Errorf("UNIBASE_SAVE_KEY must not be empty")
	}
	if c.WorkerTicks < 1 {
		return fmt.Errorf("UNIBASE_WORKER_TICKS must be >= 1")
	}
	return nil
}

func (c HostConfig) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannel != ""
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("UB_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envLevelDefault(key string, fallback slog.Level) slog.Level {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return lvl
}
