package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"
	DefaultGRPCPort   = 9090

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSourceBackend = BackendNeo4j
	DefaultFetchLimit    = 500
	// MinFetchLimit mirrors the per-direction node cap of the citation
	// engine; a smaller row limit would cut sources short without marking
	// the network truncated.
	MinFetchLimit = 50
	DefaultCacheStore    = StoreMemory
	DefaultCacheCapacity = 1024

	DefaultUpstreamRate         = 20.0
	DefaultUpstreamBurst        = 10
	DefaultUpstreamTimeout      = 10 * time.Second
	DefaultBreakerFailureRatio  = 0.6
	DefaultBreakerMinRequests   = 5
	DefaultBreakerOpenTimeout   = 30 * time.Second
	DefaultBreakerCountInterval = 60 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "citenet"
	DefaultDBMaxConns = 10

	DefaultNeo4jURI = "bolt://localhost:7687"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "citenet:network:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "citenet-warmup"
	DefaultKafkaTopic   = "patent.ingested"

	DefaultMetricsNamespace = "citenet"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills zero-value fields in cfg.  Explicit values always win.
// It runs after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Network ───────────────────────────────────────────────────────────────
	if cfg.Network.SourceBackend == "" {
		cfg.Network.SourceBackend = DefaultSourceBackend
	}
	if cfg.Network.FetchLimit == 0 {
		cfg.Network.FetchLimit = DefaultFetchLimit
	}
	if cfg.Network.CacheStore == "" {
		cfg.Network.CacheStore = DefaultCacheStore
	}
	if cfg.Network.CacheCapacity == 0 {
		cfg.Network.CacheCapacity = DefaultCacheCapacity
	}
	// CacheTTL 0 means entries never expire.

	// ── Upstream ──────────────────────────────────────────────────────────────
	if cfg.Upstream.RateLimit == 0 {
		cfg.Upstream.RateLimit = DefaultUpstreamRate
	}
	if cfg.Upstream.Burst == 0 {
		cfg.Upstream.Burst = DefaultUpstreamBurst
	}
	if cfg.Upstream.Timeout == 0 {
		cfg.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if cfg.Upstream.BreakerMaxRequests == 0 {
		cfg.Upstream.BreakerMaxRequests = 1
	}
	if cfg.Upstream.BreakerInterval == 0 {
		cfg.Upstream.BreakerInterval = DefaultBreakerCountInterval
	}
	if cfg.Upstream.BreakerTimeout == 0 {
		cfg.Upstream.BreakerTimeout = DefaultBreakerOpenTimeout
	}
	if cfg.Upstream.BreakerMinRequests == 0 {
		cfg.Upstream.BreakerMinRequests = DefaultBreakerMinRequests
	}
	if cfg.Upstream.BreakerFailureRatio == 0 {
		cfg.Upstream.BreakerFailureRatio = DefaultBreakerFailureRatio
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "internal/infrastructure/database/postgres/migrations"
	}

	// ── Neo4j ─────────────────────────────────────────────────────────────────
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = DefaultNeo4jURI
	}
	if cfg.Neo4j.MaxConnectionPoolSize == 0 {
		cfg.Neo4j.MaxConnectionPoolSize = 50
	}
	if cfg.Neo4j.ConnectionTimeout == 0 {
		cfg.Neo4j.ConnectionTimeout = 5 * time.Second
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 20
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.StartOffset == "" {
		cfg.Kafka.StartOffset = "earliest"
	}
	if cfg.Kafka.MaxWait == 0 {
		cfg.Kafka.MaxWait = time.Second
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = time.Second
	}

	// ── gRPC ──────────────────────────────────────────────────────────────────
	if cfg.GRPC.Port == 0 {
		cfg.GRPC.Port = DefaultGRPCPort
	}
	if cfg.GRPC.MaxMessageSize == 0 {
		cfg.GRPC.MaxMessageSize = 16 * 1024 * 1024
	}
	if cfg.GRPC.GracefulTimeout == 0 {
		cfg.GRPC.GracefulTimeout = 10 * time.Second
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

//Personal.AI order the ending
