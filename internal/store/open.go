package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"unibase/internal/config"
	"unibase/internal/db"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 30 * time.Second

// Open builds the store selected by cfg.StoreDriver. The returned cleanup
// releases any connections and is never nil.
func Open(ctx context.Context, cfg config.HostConfig, logger *slog.Logger) (Store, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreFile:
		fs, err := NewFileStore(cfg.SaveDir, cfg.SaveKey)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("file store ready", "path", fs.Path())
		return fs, noop, nil

	case config.StoreSQLite:
		ss, err := OpenSQLite(ctx, cfg.SQLitePath, cfg.SaveKey)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("sqlite store ready", "path", cfg.SQLitePath)
		return ss, func() { ss.Close() }, nil

	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		cleanup := []func(){pool.Close}
		var st Store = NewPostgresStore(pool, cfg.SaveKey)
		if cfg.RedisURL != "" {
			rdb, err := dialRedis(ctx, cfg.RedisURL)
			if err != nil {
				pool.Close()
				return nil, noop, err
			}
			cleanup = append(cleanup, func() { rdb.Close() })
			st = NewCachedStore(st, rdb, cfg.SaveKey, cacheTTL)
			logger.Info("redis cache enabled")
		}
		logger.Info("postgres store ready")
		return st, runAll(cleanup), nil

	case config.StoreRedis:
		rdb, err := dialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("redis store ready")
		return NewRedisStore(rdb, cfg.SaveKey), func() { rdb.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func dialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func runAll(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
