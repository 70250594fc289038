package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/casefolio/internal/app"
	"github.com/turtacn/casefolio/internal/config"
	"github.com/turtacn/casefolio/internal/infrastructure/monitoring/logging"
)

// NewServeCmd creates the serve command, which runs the API in-process.
func NewServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the casefolio API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cliCtx.Config.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, cliCtx.ConfigPath, cliCtx.Config, serverLogger(cliCtx))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

// serverLogger replaces the CLI's stderr logger with one built from the log
// section of the config, keeping a --log-level/--verbose override.
func serverLogger(cliCtx *CLIContext) logging.Logger {
	logCfg := cliCtx.Config.Log
	logCfg.Level = cliCtx.LogLevel
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return cliCtx.Logger
	}
	return logger
}

// Serve runs the API until ctx ends. When configPath names a file, edits to
// the log level and refresh interval are applied without a restart.
func Serve(ctx context.Context, configPath string, cfg *config.Config, logger logging.Logger) error {
	defer logger.Sync()

	logger.Info("Starting casefolio API server",
		logging.String("version", Version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("storage", cfg.Storage.Backend),
	)

	a, err := app.New(ctx, cfg, logger, Version)
	if err != nil {
		logger.Error("Server initialization failed", logging.Err(err))
		return err
	}
	defer a.Close()

	if configPath != "" {
		if err := config.Watch(configPath, a.ApplyConfig, func(err error) {
			logger.Warn("Ignoring invalid config change", logging.Err(err))
		}); err != nil {
			logger.Warn("Config hot reload disabled", logging.Err(err))
		}
	}

	if err := a.Run(ctx, nil); err != nil {
		logger.Error("Server stopped with error", logging.Err(err))
		return err
	}
	logger.Info("Server stopped")
	return nil
}

//Personal.AI order the ending
