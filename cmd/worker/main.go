// Command worker pre-builds citation networks for newly ingested patents so
// the first API request for them is a cache hit.  It consumes patent.ingested
// events from Kafka and serves health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/keyip-citation-network/internal/app"
	"github.com/turtacn/keyip-citation-network/internal/config"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/keyip-citation-network/internal/interfaces/http"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/handlers"
)

// Build-time variables injected via ldflags.
var version = "dev"

const topicSetupTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file (default: CITENET_* environment only)")
	healthPort := flag.Int("health-port", 0, "port of the health and metrics endpoints (overrides server.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *healthPort > 0 {
		cfg.Server.Port = *healthPort
	}
	if err := kafka.ValidateConsumerConfig(cfg.Kafka); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Shutdown(context.Background())

	if cfg.Kafka.AutoCreateTopic {
		if err := ensureTopics(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
	}

	consumer, err := newConsumer(cfg.Kafka, container, logger)
	if err != nil {
		return err
	}
	container.AddShutdownFunction(consumer.Close)
	consumer.Subscribe(cfg.Kafka.Topic, kafka.NewWarmupHandler(container.Service, logger))

	server := httpserver.NewServer(cfg.Server, httpserver.RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(version, container.HealthObserver(), container.Checkers...),
		Metrics:          container.Metrics,
		MetricsCollector: container.Collector,
		MetricsPath:      cfg.Metrics.Path,
	}, logger)

	logger.Info("starting citation network warm-up worker",
		logging.String("version", version),
		logging.String("topic", cfg.Kafka.Topic),
		logging.String("group_id", cfg.Kafka.GroupID),
		logging.Int("health_port", cfg.Server.Port),
	)

	if err := consumer.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop(context.Background())
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped with error", logging.Err(err))
		return err
	}

	stats := consumer.Stats()
	logger.Info("worker stopped",
		logging.Int64("consumed", stats.Consumed),
		logging.Int64("processed", stats.Processed),
		logging.Int64("failed", stats.Failed),
		logging.Int64("dead_lettered", stats.DeadLettered),
	)
	return nil
}

func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) error {
	manager, err := kafka.NewTopicManager(cfg.Brokers, logger)
	if err != nil {
		return err
	}
	defer manager.Close()

	ctx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()
	for _, topic := range kafka.WarmupTopics(cfg.Topic, cfg.DeadLetterTopic) {
		if err := manager.EnsureTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func newConsumer(cfg config.KafkaConfig, container *app.Container, logger logging.Logger) (*kafka.Consumer, error) {
	var opts []kafka.ConsumerOption
	if cfg.DeadLetterTopic != "" {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Brokers, Acks: "all"}, logger)
		if err != nil {
			return nil, err
		}
		container.AddShutdownFunction(producer.Close)
		opts = append(opts, kafka.WithDeadLetter(producer))
	}
	if metrics := container.Metrics; metrics != nil {
		opts = append(opts, kafka.WithMessageObserver(func(topic string, err error, elapsed time.Duration) {
			prometheus.RecordMessage(metrics, topic, err, elapsed)
		}))
	}
	return kafka.NewConsumer(cfg, logger, opts...)
}

//Personal.AI order the ending
