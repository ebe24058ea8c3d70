package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unibase/internal/game"

	"github.com/redis/go-redis/v9"
)

func saveKey(key string) string {
	return "unibase:save:" + key
}

type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (game.Snapshot, error) {
	raw, err := s.rdb.Get(ctx, saveKey(s.key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return game.Snapshot{}, ErrNoSave
		}
		return game.Snapshot{}, fmt.Errorf("redis get: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, snap game.Snapshot) error {
	raw, err := game.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, saveKey(s.key), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, saveKey(s.key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// CachedStore puts a Redis read-through cache in front of a primary store.
// Saves go to the primary first and then refresh the cache.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	key     string
	ttl     time.Duration
}

func NewCachedStore(primary Store, rdb *redis.Client, key string, ttl time.Duration) *CachedStore {
	return &CachedStore{primary: primary, rdb: rdb, key: key, ttl: ttl}
}

func (s *CachedStore) Load(ctx context.Context) (game.Snapshot, error) {
	if raw, err := s.rdb.Get(ctx, saveKey(s.key)).Bytes(); err == nil {
		if snap, err := game.DecodeSnapshot(raw); err == nil {
			return snap, nil
		}
	}
	snap, err := s.primary.Load(ctx)
	if err != nil {
		return game.Snapshot{}, err
	}
	s.cache(ctx, snap)
	return snap, nil
}

func (s *CachedStore) Save(ctx context.Context, snap game.Snapshot) error {
	if err := s.primary.Save(ctx, snap); err != nil {
		return err
	}
	s.cache(ctx, snap)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context) error {
	if err := s.primary.Delete(ctx); err != nil {
		return err
	}
	s.rdb.Del(ctx, saveKey(s.key))
	return nil
}

func (s *CachedStore) cache(ctx context.Context, snap game.Snapshot) {
	raw, err := game.EncodeSnapshot(snap)
	if err != nil {
		return
	}
	s.rdb.Set(ctx, saveKey(s.key), raw, s.ttl)
}
