package config

import (
	"time"

	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodySize     = 1 << 20

	DefaultMarketBaseURL    = "https://steamcommunity.com"
	DefaultMarketAppID      = 730
	DefaultMarketCurrency   = 1
	DefaultCurrencyCode     = "USD"
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultMarketTimeout    = 10 * time.Second
	DefaultMarketCacheTTL   = time.Hour
	DefaultBatchConcurrency = 4
	DefaultFieldSuccess     = "$.success"
	DefaultFieldLowestPrice = "$.lowest_price"
	DefaultFieldMedianPrice = "$.median_price"
	DefaultFieldVolume      = "$.volume"

	DefaultStorageBackend = "file"
	DefaultStorageKey     = "cs2-portfolio"
	DefaultStorageDir     = "./data"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisKeyPrefix = "casefolio:"

	DefaultPostgresDriver   = "pgx"
	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresDatabase = "casefolio"
	DefaultPostgresSSLMode  = "disable"
	DefaultPostgresMaxConns = 5

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "casefolio"
	DefaultMinIORegion   = "us-east-1"

	DefaultRefreshInterval       = 2 * time.Second
	DefaultRefreshRequestTimeout = 10 * time.Second
	DefaultRefreshLockTTL        = 10 * time.Minute

	DefaultTaxRate = 0.15

	DefaultEventsTopic        = "casefolio.refresh.completed"
	DefaultEventsWriteTimeout = 5 * time.Second

	DefaultMetricsNamespace = "casefolio"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = logging.LevelInfo
	DefaultLogFormat = "json"
)

// DefaultConfig returns a Config with every field at its default, including
// the fields whose zero value is meaningful (booleans, the tax rate) and
// which ApplyDefaults therefore leaves alone.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	cfg.Postgres.AutoMigrate = true
	cfg.Portfolio.TaxRate = DefaultTaxRate
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default. Fields
// already set by the caller are left unchanged so explicit configuration
// always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 {
		cfg.Server.CORSAllowedOrigins = []string{"*"}
	}

	// ── Market ────────────────────────────────────────────────────────────────
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = DefaultMarketBaseURL
	}
	if cfg.Market.AppID == 0 {
		cfg.Market.AppID = DefaultMarketAppID
	}
	if cfg.Market.Currency == 0 {
		cfg.Market.Currency = DefaultMarketCurrency
	}
	if cfg.Market.CurrencyCode == "" {
		cfg.Market.CurrencyCode = DefaultCurrencyCode
	}
	if cfg.Market.UserAgent == "" {
		cfg.Market.UserAgent = DefaultUserAgent
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = DefaultMarketTimeout
	}
	if cfg.Market.CacheTTL == 0 {
		cfg.Market.CacheTTL = DefaultMarketCacheTTL
	}
	if cfg.Market.BatchConcurrency == 0 {
		cfg.Market.BatchConcurrency = DefaultBatchConcurrency
	}
	if cfg.Market.Fields.Success == "" {
		cfg.Market.Fields.Success = DefaultFieldSuccess
	}
	if cfg.Market.Fields.LowestPrice == "" {
		cfg.Market.Fields.LowestPrice = DefaultFieldLowestPrice
	}
	if cfg.Market.Fields.MedianPrice == "" {
		cfg.Market.Fields.MedianPrice = DefaultFieldMedianPrice
	}
	if cfg.Market.Fields.Volume == "" {
		cfg.Market.Fields.Volume = DefaultFieldVolume
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Key == "" {
		cfg.Storage.Key = DefaultStorageKey
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = DefaultStorageDir
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Driver == "" {
		cfg.Postgres.Driver = DefaultPostgresDriver
	}
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPostgresHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.Database == "" {
		cfg.Postgres.Database = DefaultPostgresDatabase
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = DefaultPostgresMaxConns
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	// ── Refresh ───────────────────────────────────────────────────────────────
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = DefaultRefreshInterval
	}
	if cfg.Refresh.RequestTimeout == 0 {
		cfg.Refresh.RequestTimeout = DefaultRefreshRequestTimeout
	}
	if cfg.Refresh.LockTTL == 0 {
		cfg.Refresh.LockTTL = DefaultRefreshLockTTL
	}

	// ── Events ────────────────────────────────────────────────────────────────
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = DefaultEventsTopic
	}
	if cfg.Events.WriteTimeout == 0 {
		cfg.Events.WriteTimeout = DefaultEventsWriteTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.ServiceName == "" {
		cfg.Log.ServiceName = "casefolio"
	}
}

//Personal.AI order the ending
