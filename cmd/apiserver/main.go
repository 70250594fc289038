// API server entry point for casefolio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/casefolio/internal/app"
	"github.com/turtacn/casefolio/internal/config"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: CASEFOLIO_* environment and defaults)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logging.SetDefault(logger)

	logger.Info("starting casefolio API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("storage", cfg.Storage.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, version)
	if err != nil {
		logger.Error("initialization failed", logging.Err(err))
		os.Exit(1)
	}
	defer a.Close()

	if *configPath != "" {
		err := config.Watch(*configPath, a.ApplyConfig, func(err error) {
			logger.Warn("ignoring invalid config change", logging.Err(err))
		})
		if err != nil {
			logger.Warn("config hot reload disabled", logging.Err(err))
		}
	}

	if err := a.Run(ctx, nil); err != nil {
		logger.Error("server error", logging.Err(err))
		a.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

//Personal.AI order the ending
