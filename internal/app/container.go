// Package app wires configuration into a ready citation network service.  The
// API server, the warm-up worker and the CLI all build their dependencies
// through NewContainer so the three binaries cannot drift apart.
package app

import (
	"context"
	"fmt"

	"github.com/turtacn/keyip-citation-network/internal/application/citation"
	"github.com/turtacn/keyip-citation-network/internal/config"
	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	neo4jdb "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/keyip-citation-network/internal/infrastructure/database/redis"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/upstream"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/handlers"
)

// Container holds the wired dependencies of one process.
type Container struct {
	Config *config.Config
	Logger logging.Logger

	// Collector and Metrics are nil when metrics.enabled is false.
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Source  *upstream.ResilientSource
	Store   citation.ResultStore
	Service citation.Service

	// Checkers back the readiness endpoint.
	Checkers []handlers.HealthChecker

	source            domainCitation.CitationDataSource
	shutdownFunctions []func() error
}

// Option overrides a part of the wiring, mostly for tests and one-shot tools.
type Option func(*Container)

// WithSource skips connecting to the configured backend and uses src instead.
func WithSource(src domainCitation.CitationDataSource) Option {
	return func(c *Container) { c.source = src }
}

// WithStore skips building the configured result store.
func WithStore(store citation.ResultStore) Option {
	return func(c *Container) { c.Store = store }
}

// NewContainer connects the backend, the result store and the metrics
// registry described by cfg.  On error everything opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Container{Config: cfg, Logger: logger}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initialize(ctx); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, fmt.Errorf("app: failed to initialize container: %w", err)
	}
	return c, nil
}

func (c *Container) initialize(ctx context.Context) error {
	if err := c.initializeMetrics(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.initializeSource(ctx); err != nil {
		return fmt.Errorf("citation source: %w", err)
	}
	if err := c.initializeStore(); err != nil {
		return fmt.Errorf("result store: %w", err)
	}
	c.initializeService()

	c.Logger.Info("container initialized",
		logging.String("source_backend", c.Config.Network.SourceBackend),
		logging.String("cache_store", c.Config.Network.CacheStore),
		logging.Bool("enrichment", c.Config.Network.EnableEnrichment),
		logging.Bool("metrics", c.Metrics != nil),
	)
	return nil
}

func (c *Container) initializeMetrics() error {
	if !c.Config.Metrics.Enabled {
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            c.Config.Metrics.Namespace,
		Subsystem:            c.Config.Metrics.Subsystem,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, c.Logger.Named("metrics"))
	if err != nil {
		return err
	}
	c.Collector = collector
	c.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (c *Container) initializeSource(ctx context.Context) error {
	if c.source == nil {
		src, err := c.connectBackend(ctx)
		if err != nil {
			return err
		}
		c.source = src
	}

	var opts []upstream.Option
	if c.Metrics != nil {
		opts = append(opts, upstream.WithStateObserver(c.Metrics.BreakerStateChanged))
	}
	c.Source = upstream.NewResilientSource(c.source, c.Config.Upstream, c.Logger, opts...)
	c.Checkers = append(c.Checkers, handlers.CheckerFunc("citation_source", c.Source.HealthCheck))
	return nil
}

func (c *Container) connectBackend(ctx context.Context) (domainCitation.CitationDataSource, error) {
	cfg := c.Config
	switch cfg.Network.SourceBackend {
	case config.BackendNeo4j:
		driver, err := neo4jdb.NewDriver(cfg.Neo4j, c.Logger)
		if err != nil {
			return nil, err
		}
		c.addShutdownFunction(driver.Close)
		return neo4jrepo.NewCitationSource(driver, cfg.Network.FetchLimit, c.Logger), nil

	case config.BackendPostgres:
		if cfg.Database.AutoMigrate {
			if err := c.migrate(); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, c.Logger)
		if err != nil {
			return nil, err
		}
		c.addShutdownFunction(func() error {
			pool.Close()
			return nil
		})
		return pgrepo.NewCitationSource(pool, cfg.Network.FetchLimit, c.Logger), nil

	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Network.SourceBackend)
	}
}

func (c *Container) migrate() error {
	conn, err := postgres.NewConnection(c.Config.Database, c.Logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.RunMigrations(c.Config.Database.MigrationPath)
}

func (c *Container) initializeStore() error {
	if c.Store != nil {
		return nil
	}
	network := c.Config.Network
	switch network.CacheStore {
	case config.StoreRedis:
		client, err := redisdb.NewClient(&c.Config.Redis, c.Logger)
		if err != nil {
			return err
		}
		c.addShutdownFunction(client.Close)
		store := redisdb.NewNetworkStore(client, c.Logger,
			redisdb.WithPrefix(c.Config.Redis.KeyPrefix),
			redisdb.WithTTL(network.CacheTTL),
		)
		c.Store = store
		c.Checkers = append(c.Checkers, handlers.CheckerFunc("redis", store.Ping))
	default:
		c.Store = citation.NewMemoryStore(
			citation.WithCapacity(network.CacheCapacity),
			citation.WithTTL(network.CacheTTL),
		)
	}
	return nil
}

func (c *Container) initializeService() {
	opts := []citation.Option{citation.WithResultStore(c.Store)}
	if c.Config.Network.EnableEnrichment {
		opts = append(opts, citation.WithDetailSource(c.Source))
	}
	if c.Metrics != nil {
		opts = append(opts, citation.WithMetricsRecorder(c.Metrics))
	}
	c.Service = citation.NewService(c.Source, c.Logger, opts...)
}

// HealthObserver exports health check results as gauges; nil without metrics.
func (c *Container) HealthObserver() handlers.HealthObserver {
	if c.Metrics == nil {
		return nil
	}
	return func(component string, healthy bool) {
		prometheus.RecordHealth(c.Metrics, component, healthy)
	}
}

func (c *Container) addShutdownFunction(fn func() error) {
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// AddShutdownFunction registers fn to run on Shutdown, before anything
// registered earlier.
func (c *Container) AddShutdownFunction(fn func() error) {
	c.addShutdownFunction(fn)
}

// Shutdown closes resources in reverse order of creation.  It is safe to call
// more than once.
func (c *Container) Shutdown(_ context.Context) error {
	var failed int
	for i := len(c.shutdownFunctions) - 1; i >= 0; i-- {
		if err := c.shutdownFunctions[i](); err != nil {
			failed++
			c.Logger.Error("shutdown step failed", logging.Err(err))
		}
	}
	c.shutdownFunctions = nil
	if failed > 0 {
		return fmt.Errorf("app: shutdown completed with %d errors", failed)
	}
	return nil
}

//Personal.AI order the ending
