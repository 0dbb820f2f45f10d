// Command scafsplit-server serves the scaffold split API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/scaffold-split/internal/bootstrap"
	"github.com/turtacn/scaffold-split/internal/config"
	"github.com/turtacn/scaffold-split/internal/domain/partition"
	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/scaffold-split/internal/interfaces/http"
	"github.com/turtacn/scaffold-split/internal/interfaces/http/handlers"
	"github.com/turtacn/scaffold-split/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (environment only when empty)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	corsOrigins := flag.String("cors-origin", "", "allowed CORS origin, \"*\" for any")
	flag.Parse()

	if err := run(*configPath, *port, *corsOrigins); err != nil {
		fmt.Fprintf(os.Stderr, "scafsplit-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, corsOrigin string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger.Info("starting scafsplit server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.Int("port", cfg.Server.Port))

	gin.SetMode(cfg.Server.Mode)

	infra, err := bootstrap.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("infrastructure: %w", err)
	}
	defer infra.Close()

	var checkers []handlers.HealthChecker
	for _, c := range infra.HealthCheckers() {
		checkers = append(checkers, c)
	}

	defaults := partition.Options{
		Sizes:    partition.SizeSpec{Train: cfg.Split.TrainSize, Test: cfg.Split.TestSize},
		Balanced: cfg.Split.Balanced,
		Seed:     cfg.Split.Seed,
	}
	routerCfg := httpserver.RouterConfig{
		SplitHandler:  handlers.NewSplitHandler(infra.Service, defaults, logger.Named("api")),
		HealthHandler: handlers.NewHealthHandler(version, checkers...),
		Logger:        logger,
		MaxBodySize:   cfg.Server.MaxBodySize,
	}
	if infra.Collector != nil {
		routerCfg.MetricsHandler = infra.Collector.Handler()
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.Recorder = infra.Metrics
	}
	if corsOrigin != "" {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = []string{corsOrigin}
		routerCfg.CORS = &cors
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	if configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			if logging.SetLevel(logger, logging.Level(next.Log.Level)) {
				logger.Info("log level changed", logging.String("level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("ignoring invalid configuration change", logging.Err(err))
		})
		if err != nil {
			logger.Warn("configuration hot reload disabled", logging.Err(err))
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received signal", logging.String("signal", sig.String()))
	}

	if err := srv.Stop(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error", logging.Err(err))
		return err
	}
	return <-errCh
}

func newLogger(cfg *config.Config) (logging.Logger, error) {
	lc := logging.LogConfig{
		Level:  logging.Level(cfg.Log.Level),
		Format: cfg.Log.Format,
	}
	if cfg.Log.Output != "" {
		lc.OutputPaths = []string{cfg.Log.Output}
	}
	return logging.NewLogger(lc)
}

//Personal.AI order the ending
