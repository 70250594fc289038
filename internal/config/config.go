// Package config defines all configuration structures for casefolio.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/turtacn/casefolio/internal/domain/currency"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize        int64         `mapstructure:"max_body_size"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// QuoteFieldsConfig holds JSONPath expressions locating the quote fields in
// the price overview response.
type QuoteFieldsConfig struct {
	Success     string `mapstructure:"success"`
	LowestPrice string `mapstructure:"lowest_price"`
	MedianPrice string `mapstructure:"median_price"`
	Volume      string `mapstructure:"volume"`
}

// MarketConfig holds the Steam Community Market upstream parameters.
type MarketConfig struct {
	BaseURL          string            `mapstructure:"base_url"`
	AppID            int               `mapstructure:"app_id"`
	Currency         int               `mapstructure:"currency"`      // Steam numeric currency id
	CurrencyCode     string            `mapstructure:"currency_code"` // ISO 4217 code used for display
	UserAgent        string            `mapstructure:"user_agent"`
	Timeout          time.Duration     `mapstructure:"timeout"`
	CacheEnabled     bool              `mapstructure:"cache_enabled"`
	CacheTTL         time.Duration     `mapstructure:"cache_ttl"`
	BatchConcurrency int               `mapstructure:"batch_concurrency"`
	Fields           QuoteFieldsConfig `mapstructure:"fields"`
}

// StorageConfig selects the persistence backend for the portfolio record.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "memory" | "file" | "redis" | "postgres" | "minio"
	Key     string `mapstructure:"key"`
	Dir     string `mapstructure:"dir"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Driver          string        `mapstructure:"driver"` // "pgx" | "postgres"
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	ObjectPrefix string `mapstructure:"object_prefix"`
}

// RefreshConfig holds the price refresh coordinator parameters.
type RefreshConfig struct {
	Interval        time.Duration `mapstructure:"interval"`         // delay between upstream requests
	ScheduleEvery   time.Duration `mapstructure:"schedule_every"`   // 0 disables automatic runs
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`  // per item
	DistributedLock bool          `mapstructure:"distributed_lock"` // requires redis.enabled
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
}

// PortfolioConfig holds valuation policy.
type PortfolioConfig struct {
	TaxRate float64 `mapstructure:"tax_rate"`
}

// EventsConfig configures the Kafka refresh completion notifier.
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Market    MarketConfig      `mapstructure:"market"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Postgres  PostgresConfig    `mapstructure:"postgres"`
	MinIO     MinIOConfig       `mapstructure:"minio"`
	Refresh   RefreshConfig     `mapstructure:"refresh"`
	Portfolio PortfolioConfig   `mapstructure:"portfolio"`
	Events    EventsConfig      `mapstructure:"events"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if _, err := url.ParseRequestURI(c.Market.BaseURL); err != nil {
		return fmt.Errorf("config: market.base_url %q is invalid: %w", c.Market.BaseURL, err)
	}
	if c.Market.AppID <= 0 {
		return fmt.Errorf("config: market.app_id must be > 0, got %d", c.Market.AppID)
	}
	if c.Market.Currency <= 0 {
		return fmt.Errorf("config: market.currency must be > 0, got %d", c.Market.Currency)
	}
	code, ok := currency.SteamCurrencyCode(c.Market.Currency)
	if !ok {
		return fmt.Errorf("config: market.currency %d is not supported; prices must use a '.' decimal separator", c.Market.Currency)
	}
	if !strings.EqualFold(c.Market.CurrencyCode, code) {
		return fmt.Errorf("config: market.currency_code %q does not match market.currency %d (%s)", c.Market.CurrencyCode, c.Market.Currency, code)
	}
	if c.Market.BatchConcurrency < 1 {
		return fmt.Errorf("config: market.batch_concurrency must be ≥ 1, got %d", c.Market.BatchConcurrency)
	}

	switch c.Storage.Backend {
	case "memory", "file":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for the redis storage backend")
		}
	case "postgres":
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("config: postgres.host and postgres.database are required for the postgres storage backend")
		}
		switch c.Postgres.Driver {
		case "pgx", "postgres":
		default:
			return fmt.Errorf("config: postgres.driver %q is invalid; expected pgx|postgres", c.Postgres.Driver)
		}
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required for the minio storage backend")
		}
	default:
		return fmt.Errorf("config: storage.backend %q is invalid; expected memory|file|redis|postgres|minio", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("config: storage.key is required")
	}

	if c.Refresh.Interval < 0 {
		return fmt.Errorf("config: refresh.interval must not be negative")
	}
	if c.Refresh.DistributedLock && !c.Redis.Enabled {
		return fmt.Errorf("config: refresh.distributed_lock requires redis.enabled")
	}
	if c.Market.CacheEnabled && !c.Redis.Enabled {
		return fmt.Errorf("config: market.cache_enabled requires redis.enabled")
	}

	if c.Portfolio.TaxRate < 0 || c.Portfolio.TaxRate >= 1 {
		return fmt.Errorf("config: portfolio.tax_rate %.4f is out of range [0, 1)", c.Portfolio.TaxRate)
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			return fmt.Errorf("config: events.brokers must contain at least one broker address")
		}
		if c.Events.Topic == "" {
			return fmt.Errorf("config: events.topic is required")
		}
	}

	if _, err := logging.ParseLevel(string(c.Log.Level)); err != nil {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
