// Command apiserver serves citation networks over HTTP and, when grpc.enabled
// is set, over gRPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/keyip-citation-network/internal/app"
	"github.com/turtacn/keyip-citation-network/internal/config"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/keyip-citation-network/internal/interfaces/grpc"
	httpserver "github.com/turtacn/keyip-citation-network/internal/interfaces/http"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/handlers"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file (default: CITENET_* environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides server.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger = logger.Named("apiserver")

	if *configPath != "" {
		watchLogLevel(*configPath, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Shutdown(context.Background())

	server := httpserver.NewServer(cfg.Server, httpserver.RouterConfig{
		CitationHandler:  handlers.NewCitationHandler(container.Service, logger),
		HealthHandler:    handlers.NewHealthHandler(version, container.HealthObserver(), container.Checkers...),
		Metrics:          container.Metrics,
		MetricsCollector: container.Collector,
		MetricsPath:      cfg.Metrics.Path,
	}, logger)

	logger.Info("starting citation network API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop(context.Background())
	})

	if cfg.GRPC.Enabled {
		grpcSrv, err := grpcserver.NewServer(cfg.GRPC,
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithMetrics(container.Metrics),
		)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		grpcserver.RegisterCitationService(grpcSrv, grpcserver.NewCitationService(container.Service, logger))
		logger.Info("gRPC listener enabled", logging.String("address", grpcSrv.Addr()))

		g.Go(grpcSrv.Start)
		g.Go(func() error {
			<-gctx.Done()
			return grpcSrv.Stop(context.Background())
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("API server stopped with error", logging.Err(err))
		return err
	}
	logger.Info("API server stopped")
	return nil
}

// watchLogLevel applies log.level edits without a restart.  Other settings
// need a restart.
func watchLogLevel(configPath string, logger logging.Logger) {
	err := config.Watch(configPath, func(cfg *config.Config) {
		if cfg.Log.Level != logging.CurrentLevel() {
			logging.SetLevel(cfg.Log.Level)
			logger.Info("log level changed", logging.String("level", cfg.Log.Level))
		}
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
