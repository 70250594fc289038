// Package app assembles the casefolio API server from a Config: storage,
// market client, services, refresh coordinator and HTTP surface.
package app

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/casefolio/internal/application/portfolio"
	"github.com/turtacn/casefolio/internal/application/pricing"
	"github.com/turtacn/casefolio/internal/application/refresh"
	"github.com/turtacn/casefolio/internal/config"
	"github.com/turtacn/casefolio/internal/domain/currency"
	"github.com/turtacn/casefolio/internal/infrastructure/database/redis"
	"github.com/turtacn/casefolio/internal/infrastructure/market"
	"github.com/turtacn/casefolio/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/casefolio/internal/infrastructure/storage"
	httpserver "github.com/turtacn/casefolio/internal/interfaces/http"
	"github.com/turtacn/casefolio/internal/interfaces/http/handlers"
	"github.com/turtacn/casefolio/internal/interfaces/http/middleware"
)

// App holds every long-lived component of a running server.
type App struct {
	Config      *config.Config
	Logger      logging.Logger
	Metrics     *prometheus.AppMetrics
	Portfolio   portfolio.Service
	Pricing     pricing.Service
	Coordinator *refresh.Coordinator
	Server      *httpserver.Server

	collector prometheus.MetricsCollector
	redis     *redis.Client
	store     *storage.Store
	producer  *kafka.Producer
	checkers  []handlers.HealthChecker

	// baseCtx outlives requests; refresh runs started over HTTP use it.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	closeOnce sync.Once
}

// New connects every configured backend. On error, whatever was opened is
// closed again.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, version string) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	a.baseCtx, a.baseCancel = context.WithCancel(context.Background())

	if err := a.initMetrics(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initInfrastructure(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initServices(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.initHTTP(version)
	return a, nil
}

func (a *App) initMetrics() error {
	if !a.Config.Metrics.Enabled {
		a.Metrics = prometheus.NewNopAppMetrics()
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            a.Config.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, a.Logger)
	if err != nil {
		return err
	}
	a.collector = collector
	a.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (a *App) initInfrastructure(ctx context.Context) error {
	cfg := a.Config

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(storage.RedisClientConfig(cfg.Redis), a.Logger.Named("redis"))
		if err != nil {
			return err
		}
		a.redis = client
		a.checkers = append(a.checkers, handlers.NewChecker("redis", client.Ping))
	}

	var opts []storage.FactoryOption
	if a.redis != nil {
		opts = append(opts, storage.WithRedisClient(a.redis))
	}
	backend, err := storage.NewBackend(ctx, cfg, a.Logger.Named("storage"), opts...)
	if err != nil {
		return err
	}
	a.store = storage.NewStore(backend, cfg.Storage.Key, a.Logger.Named("storage"), a.Metrics)
	a.checkers = append(a.checkers, handlers.NewChecker("storage", backend.Ping))

	if cfg.Events.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Events.Brokers,
			Acks:         "one",
			WriteTimeout: cfg.Events.WriteTimeout,
		}, a.Logger.Named("kafka"))
		if err != nil {
			return err
		}
		a.producer = producer
	}
	return nil
}

func (a *App) initServices(ctx context.Context) error {
	cfg := a.Config
	formatter := currency.NewFormatter(cfg.Market.CurrencyCode)

	decoder, err := market.NewDecoder(market.FieldPaths{
		Success:     cfg.Market.Fields.Success,
		LowestPrice: cfg.Market.Fields.LowestPrice,
		MedianPrice: cfg.Market.Fields.MedianPrice,
		Volume:      cfg.Market.Fields.Volume,
	})
	if err != nil {
		return err
	}

	client := market.NewClient(market.Config{
		BaseURL:   cfg.Market.BaseURL,
		AppID:     cfg.Market.AppID,
		Currency:  cfg.Market.Currency,
		UserAgent: cfg.Market.UserAgent,
		Timeout:   cfg.Market.Timeout,
	}, a.Logger.Named("market"), market.WithMetrics(a.Metrics))

	var fetcher market.Fetcher = client
	if cfg.Market.CacheEnabled && a.redis != nil {
		cache := redis.NewRedisCache(a.redis, a.Logger.Named("cache"),
			redis.WithPrefix(cfg.Redis.KeyPrefix+"cache:"),
			redis.WithDefaultTTL(cfg.Market.CacheTTL),
		)
		fetcher = market.NewCachedFetcher(client, cache, cfg.Market.CacheTTL, a.Logger.Named("cache"), a.Metrics)
	}

	a.Portfolio = portfolio.NewService(ctx, a.store, a.Logger.Named("portfolio"),
		portfolio.WithTaxRate(decimal.NewFromFloat(cfg.Portfolio.TaxRate)),
		portfolio.WithFormatter(formatter),
		portfolio.WithMetrics(a.Metrics),
	)
	a.Pricing = pricing.NewService(fetcher, a.Logger.Named("pricing"),
		pricing.WithConcurrency(cfg.Market.BatchConcurrency),
		pricing.WithNameIDResolver(client),
	)

	notifiers := []refresh.Notifier{refresh.NewLogNotifier(a.Logger.Named("refresh"))}
	if a.producer != nil {
		notifiers = append(notifiers, refresh.NewKafkaNotifier(a.producer, cfg.Events.Topic))
	}
	refreshOpts := []refresh.Option{
		refresh.WithInterval(cfg.Refresh.Interval),
		refresh.WithRequestTimeout(cfg.Refresh.RequestTimeout),
		refresh.WithDecoder(decoder),
		refresh.WithNotifiers(notifiers...),
		refresh.WithMetrics(a.Metrics),
	}
	if cfg.Refresh.DistributedLock && a.redis != nil {
		locks := redis.NewLockFactory(a.redis, cfg.Redis.KeyPrefix, a.Logger.Named("lock"))
		refreshOpts = append(refreshOpts, refresh.WithLock(locks.NewMutex("refresh",
			redis.WithLockTTL(cfg.Refresh.LockTTL),
			redis.WithWatchdog(true),
		)))
	}
	// Fetches go straight to the client so a refresh always sees live prices.
	a.Coordinator = refresh.NewCoordinator(client, a.Portfolio, a.Logger.Named("refresh"), refreshOpts...)
	return nil
}

func (a *App) initHTTP(version string) {
	cfg := a.Config
	maxBody := cfg.Server.MaxBodySize

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSAllowedOrigins
	}

	routerCfg := httpserver.RouterConfig{
		PriceHandler:      handlers.NewPriceHandler(a.Pricing, a.Logger.Named("http"), maxBody),
		PortfolioHandler:  handlers.NewPortfolioHandler(a.Portfolio, a.Logger.Named("http"), maxBody),
		RefreshHandler:    handlers.NewRefreshHandler(a.baseCtx, a.Coordinator, a.Logger.Named("http"), maxBody),
		CatalogHandler:    handlers.NewCatalogHandler(a.Portfolio, a.Pricing, currency.NewFormatter(cfg.Market.CurrencyCode)),
		HealthHandler:     handlers.NewHealthHandler(version, a.Metrics, a.checkers...),
		CORSMiddleware:    middleware.NewCORSMiddleware(cors),
		LoggingMiddleware: middleware.NewLoggingMiddleware(a.Logger.Named("http"), middleware.DefaultLoggingConfig()),
	}
	if a.collector != nil {
		routerCfg.Metrics = a.Metrics
		routerCfg.MetricsCollector = a.collector
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	a.Server = httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), a.Logger)
}

// Run serves on ln (or the configured address when ln is nil) until ctx is
// done, then shuts the server down and cancels any running refresh.
func (a *App) Run(ctx context.Context, ln net.Listener) error {
	if a.Config.Refresh.ScheduleEvery > 0 {
		go a.Coordinator.Schedule(a.baseCtx, a.Config.Refresh.ScheduleEvery)
	}

	errCh := make(chan error, 1)
	go func() {
		if ln != nil {
			errCh <- a.Server.Serve(ln)
			return
		}
		errCh <- a.Server.Start()
	}()

	select {
	case err := <-errCh:
		a.baseCancel()
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer cancel()
	err := a.Server.Stop(stopCtx)

	// Cancelling a run merges what it fetched so far; wait for that before
	// the store is closed.
	if run := a.Coordinator.Current(); run != nil {
		_ = a.Coordinator.Cancel()
		select {
		case <-run.Done():
		case <-stopCtx.Done():
		}
	}
	a.baseCancel()
	return err
}

// ApplyConfig takes over the settings that are safe to change at runtime:
// the log level and the refresh request interval.
func (a *App) ApplyConfig(cfg *config.Config) {
	if logging.SetLevel(a.Logger, cfg.Log.Level) {
		a.Logger.Info("Log level changed", logging.String("level", cfg.Log.Level.String()))
	}
	a.Coordinator.SetInterval(cfg.Refresh.Interval)
}

// Close releases every backend. Safe to call more than once.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.baseCancel()
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.Logger.Warn("Kafka producer close failed", logging.Err(err))
			}
		}
		if a.store != nil {
			if err := a.store.Close(); err != nil {
				a.Logger.Warn("Storage close failed", logging.Err(err))
			}
		}
		if a.redis != nil {
			a.redis.Close()
		}
	})
}

//Personal.AI order the ending
