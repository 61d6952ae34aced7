package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store on a Redis connection. Every key is namespaced with
// the shard prefix so distinct subsystems (auth, favorites) never collide.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, shard string) *Redis {
	return &Redis{client: client, prefix: shard}
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := r.client.HGetAll(ctx, r.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: hgetall %s: %w", key, err)
	}
	return m, nil
}

func (r *Redis) HashSetMap(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HSet(ctx, r.key(key), fields).Err(); err != nil {
		return fmt.Errorf("store: hset %s: %w", key, err)
	}
	return nil
}

func (r *Redis) HashSetIfAbsent(ctx context.Context, key, field, value string) (bool, error) {
	ok, err := r.client.HSetNX(ctx, r.key(key), field, value).Result()
	if err != nil {
		return false, fmt.Errorf("store: hsetnx %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) HashDelete(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key(key), fields...).Err(); err != nil {
		return fmt.Errorf("store: hdel %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("store: incr %s: %w", key, err)
	}
	return n, nil
}
