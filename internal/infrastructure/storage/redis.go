package storage

import (
	"context"
	stderrors "errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/turtacn/casefolio/internal/infrastructure/database/redis"
	"github.com/turtacn/casefolio/pkg/errors"
)

// RedisBackend stores each key as a plain Redis string under prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
	// owned backends close the client on Close.
	owned bool
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if stderrors.Is(err, goredis.Nil) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "redis get failed").WithDetail(key)
	}
	return data, nil
}

// Put writes without expiry.
func (r *RedisBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, 0).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "redis set failed").WithDetail(key)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "redis del failed").WithDetail(key)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageBackend, "redis ping failed")
	}
	return nil
}

func (r *RedisBackend) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

//Personal.AI order the ending
