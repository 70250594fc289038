// Package config provides configuration loading, defaults, and validation for
// casefolio.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CASEFOLIO"

// newViper builds a Viper instance with YAML file type, the CASEFOLIO_ env
// prefix, automatic env binding and a "." → "_" key replacer, so that
// "market.app_id" resolves to CASEFOLIO_MARKET_APP_ID.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerDefaults(v)
	return v
}

// registerDefaults makes every key known to viper. AutomaticEnv only
// consults the environment for keys viper already knows about, so without
// this LoadFromEnv would ignore variables for keys absent from any file.
func registerDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.cors_allowed_origins", d.Server.CORSAllowedOrigins)

	v.SetDefault("market.base_url", d.Market.BaseURL)
	v.SetDefault("market.app_id", d.Market.AppID)
	v.SetDefault("market.currency", d.Market.Currency)
	v.SetDefault("market.currency_code", d.Market.CurrencyCode)
	v.SetDefault("market.user_agent", d.Market.UserAgent)
	v.SetDefault("market.timeout", d.Market.Timeout)
	v.SetDefault("market.cache_enabled", d.Market.CacheEnabled)
	v.SetDefault("market.cache_ttl", d.Market.CacheTTL)
	v.SetDefault("market.batch_concurrency", d.Market.BatchConcurrency)
	v.SetDefault("market.fields.success", d.Market.Fields.Success)
	v.SetDefault("market.fields.lowest_price", d.Market.Fields.LowestPrice)
	v.SetDefault("market.fields.median_price", d.Market.Fields.MedianPrice)
	v.SetDefault("market.fields.volume", d.Market.Fields.Volume)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.dir", d.Storage.Dir)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.read_timeout", d.Redis.ReadTimeout)
	v.SetDefault("redis.write_timeout", d.Redis.WriteTimeout)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("postgres.driver", d.Postgres.Driver)
	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.database", d.Postgres.Database)
	v.SetDefault("postgres.username", d.Postgres.Username)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.ssl_mode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime", d.Postgres.ConnMaxLifetime)
	v.SetDefault("postgres.auto_migrate", d.Postgres.AutoMigrate)

	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.access_key", d.MinIO.AccessKey)
	v.SetDefault("minio.secret_key", d.MinIO.SecretKey)
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.region", d.MinIO.Region)
	v.SetDefault("minio.use_ssl", d.MinIO.UseSSL)
	v.SetDefault("minio.object_prefix", d.MinIO.ObjectPrefix)

	v.SetDefault("refresh.interval", d.Refresh.Interval)
	v.SetDefault("refresh.schedule_every", d.Refresh.ScheduleEvery)
	v.SetDefault("refresh.request_timeout", d.Refresh.RequestTimeout)
	v.SetDefault("refresh.distributed_lock", d.Refresh.DistributedLock)
	v.SetDefault("refresh.lock_ttl", d.Refresh.LockTTL)

	v.SetDefault("portfolio.tax_rate", d.Portfolio.TaxRate)

	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("events.write_timeout", d.Events.WriteTimeout)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
	v.SetDefault("log.error_output_paths", d.Log.ErrorOutputPaths)
	v.SetDefault("log.service_name", d.Log.ServiceName)
}

// Load reads the YAML file at configPath, merges CASEFOLIO_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CASEFOLIO_* environment variables and
// defaults only, with no config file required.
//
//	CASEFOLIO_<SECTION>_<FIELD>   e.g.  CASEFOLIO_STORAGE_BACKEND, CASEFOLIO_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes on disk. It is meant for hot-reloading the safe
// subset of settings (log level, refresh interval); callers apply only that
// subset. Invalid edits are reported through onError and skipped.
//
// Watch is non-blocking; viper runs the watcher in its own goroutine.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on any error. Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

// LoadOrDefault loads configPath when it is non-empty and otherwise falls
// back to environment variables and defaults.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

//Personal.AI order the ending
