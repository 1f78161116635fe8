package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arko-chat/geobridge/internal/app"
	"github.com/arko-chat/geobridge/internal/config"
	"github.com/arko-chat/geobridge/internal/credentials"
	"github.com/arko-chat/geobridge/internal/logger"
)

var (
	flagConfigDir string
	flagDataDir   string
	flagCatalog   string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "geobridge",
	Short:         "Location SDK bridge for web runtimes",
	Long:          "Exposes a location SDK to JavaScript over HTTP, websockets or a webview binding.\nCalls settle exactly once; tracking events are pushed as they happen.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "Directory holding config.json (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for persisted SDK settings")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to a catalog YAML replacing the built-in one")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every serving command needs before it picks a transport.
type env struct {
	cfg   *config.Config
	level *slog.LevelVar
	log   *slog.Logger
}

func loadEnv() (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfigDir != "" {
		cfg, err = config.LoadFrom(flagConfigDir)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagCatalog != "" {
		cfg.Catalog = flagCatalog
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stderr, logger.RotatingFile(cfg.LogFile))
	}
	log := logger.New(out, logger.Format(cfg.LogFormat), level)
	slog.SetDefault(log)

	return &env{cfg: cfg, level: level, log: log}, nil
}

func (e *env) newApp(quiet bool) (*app.App, error) {
	secret, err := credentials.TokenSecret()
	if err != nil {
		e.log.Warn("token secret unavailable, tokens will not survive a restart", "err", err)
	}
	return app.New(app.Options{
		DataDir:        e.cfg.DataDir,
		CatalogPath:    e.cfg.Catalog,
		PublishableKey: e.cfg.PublishableKey,
		TokenKey:       secret,
		CallTimeout:    e.cfg.CallTimeout(),
		Logger:         e.log,
		Level:          e.level,
		Quiet:          quiet,
		AllowedOrigins: e.cfg.AllowedOrigins,
	})
}

// watchConfig follows log_level edits in the config file. A missing
// watcher only disables hot reload.
func (e *env) watchConfig() *config.Watcher {
	w, err := config.NewWatcher(e.cfg.Path, func(level string) error {
		lvl, err := logger.ParseLevel(level)
		if err != nil {
			return err
		}
		e.level.Set(lvl)
		return nil
	}, e.log)
	if err != nil {
		e.log.Warn("hot-reload disabled", "err", err)
		return nil
	}
	return w
}
