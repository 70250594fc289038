package storage

import (
	"context"

	"github.com/turtacn/casefolio/internal/config"
	"github.com/turtacn/casefolio/internal/infrastructure/database/postgres"
	"github.com/turtacn/casefolio/internal/infrastructure/database/redis"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/storage/minio"
	"github.com/turtacn/casefolio/pkg/errors"
)

type factoryOptions struct {
	redisClient *redis.Client
}

// FactoryOption customises NewBackend.
type FactoryOption func(*factoryOptions)

// WithRedisClient reuses an existing client for the redis backend instead of
// dialing a new one. The backend does not close a shared client.
func WithRedisClient(c *redis.Client) FactoryOption {
	return func(o *factoryOptions) { o.redisClient = c }
}

// NewBackend builds the backend named by cfg.Storage.Backend and checks it
// is reachable.
func NewBackend(ctx context.Context, cfg *config.Config, log logging.Logger, opts ...FactoryOption) (Backend, error) {
	var o factoryOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		b   Backend
		err error
	)
	switch cfg.Storage.Backend {
	case "memory":
		b = NewMemoryBackend()
	case "file":
		b, err = NewFileBackend(cfg.Storage.Dir)
	case "redis":
		b, err = newRedisBackend(cfg.Redis, o.redisClient, log)
	case "postgres":
		b, err = newPostgresBackend(cfg.Postgres, log)
	case "minio":
		b, err = newMinIOBackend(cfg.MinIO, log)
	default:
		return nil, errors.InvalidParam("unknown storage backend").WithDetail(cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := b.Ping(ctx); err != nil {
		b.Close()
		return nil, err
	}
	log.Info("Storage backend ready", logging.String("backend", b.Name()), logging.String("key", cfg.Storage.Key))
	return b, nil
}

func newRedisBackend(cfg config.RedisConfig, shared *redis.Client, log logging.Logger) (Backend, error) {
	if shared != nil {
		return NewRedisBackend(shared, cfg.KeyPrefix), nil
	}
	client, err := redis.NewClient(RedisClientConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	b := NewRedisBackend(client, cfg.KeyPrefix)
	b.owned = true
	return b, nil
}

func newPostgresBackend(cfg config.PostgresConfig, log logging.Logger) (Backend, error) {
	conn, err := postgres.NewConnection(PostgresConnConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := conn.RunMigrations(); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return postgres.NewKVStore(conn, log), nil
}

func newMinIOBackend(cfg config.MinIOConfig, log logging.Logger) (Backend, error) {
	client, err := minio.NewClient(MinIOClientConfig(cfg), log)
	if err != nil {
		return nil, err
	}
	return minio.NewObjectStore(client, log), nil
}

// RedisClientConfig maps the redis config section onto the client config.
func RedisClientConfig(c config.RedisConfig) *redis.Config {
	return &redis.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

func PostgresConnConfig(c config.PostgresConfig) postgres.Config {
	return postgres.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		Database:        c.Database,
		Username:        c.Username,
		Password:        c.Password,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func MinIOClientConfig(c config.MinIOConfig) *minio.Config {
	return &minio.Config{
		Endpoint:     c.Endpoint,
		AccessKey:    c.AccessKey,
		SecretKey:    c.SecretKey,
		Bucket:       c.Bucket,
		Region:       c.Region,
		UseSSL:       c.UseSSL,
		ObjectPrefix: c.ObjectPrefix,
	}
}

//Personal.AI order the ending
