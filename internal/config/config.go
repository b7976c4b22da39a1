// Package config defines the configuration structures of the citation network
// service.  No I/O or parsing logic lives here, only data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

// Source backends.
const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
)

// Result store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins enables CORS for these browser origins.  Empty disables it.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GRPCConfig holds the optional gRPC listener.
type GRPCConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"` // registers server reflection
	MaxMessageSize  int           `mapstructure:"max_message_size"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

// NetworkConfig selects the citation backend and result store.
type NetworkConfig struct {
	SourceBackend    string        `mapstructure:"source_backend"` // "neo4j" | "postgres"
	EnableEnrichment bool          `mapstructure:"enable_enrichment"`
	FetchLimit       int           `mapstructure:"fetch_limit"`
	CacheStore       string        `mapstructure:"cache_store"` // "memory" | "redis"
	CacheCapacity    int           `mapstructure:"cache_capacity"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

// UpstreamConfig guards calls into the citation backend.
type UpstreamConfig struct {
	RateLimit           float64       `mapstructure:"rate_limit"` // requests per second, negative = unlimited
	Burst               int           `mapstructure:"burst"`
	Timeout             time.Duration `mapstructure:"timeout"`
	BreakerMaxRequests  uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval     time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"`
	BreakerMinRequests  uint32        `mapstructure:"breaker_min_requests"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// Neo4jConfig holds citation graph database connection parameters.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the cache warm-up consumer parameters.
type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	GroupID        string        `mapstructure:"group_id"`
	Topic          string        `mapstructure:"topic"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	MaxWait        time.Duration `mapstructure:"max_wait"`
	StartOffset    string        `mapstructure:"start_offset"` // "earliest" | "latest"
	CommitInterval time.Duration `mapstructure:"commit_interval"`

	// Failed messages are retried MaxRetries times with doubling backoff, then
	// published to DeadLetterTopic when set.
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`

	// AutoCreateTopic makes the worker create Topic on startup when missing.
	AutoCreateTopic bool `mapstructure:"auto_create_topic"`
}

// MetricsConfig configures the Prometheus registry.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	GRPC     GRPCConfig        `mapstructure:"grpc"`
	Log      logging.LogConfig `mapstructure:"log"`
	Network  NetworkConfig     `mapstructure:"network"`
	Upstream UpstreamConfig    `mapstructure:"upstream"`
	Database DatabaseConfig    `mapstructure:"database"`
	Neo4j    Neo4jConfig       `mapstructure:"neo4j"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// Validate performs semantic validation of a defaulted Config and returns the
// first problem found.  Backend sections are only checked when selected.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.GRPC.Enabled && (c.GRPC.Port < 1 || c.GRPC.Port > 65535) {
		return fmt.Errorf("config: grpc.port %d is out of range [1, 65535]", c.GRPC.Port)
	}

	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	switch c.Network.SourceBackend {
	case BackendNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required for source_backend %q", BackendNeo4j)
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("config: network.source_backend %q is invalid; expected neo4j|postgres", c.Network.SourceBackend)
	}
	if c.Network.FetchLimit < MinFetchLimit {
		return fmt.Errorf("config: network.fetch_limit must be >= %d, got %d", MinFetchLimit, c.Network.FetchLimit)
	}

	switch c.Network.CacheStore {
	case StoreMemory:
		if c.Network.CacheCapacity < 1 {
			return fmt.Errorf("config: network.cache_capacity must be >= 1, got %d", c.Network.CacheCapacity)
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for cache_store %q", StoreRedis)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	default:
		return fmt.Errorf("config: network.cache_store %q is invalid; expected memory|redis", c.Network.CacheStore)
	}
	if c.Network.CacheTTL < 0 {
		return fmt.Errorf("config: network.cache_ttl must not be negative")
	}

	if c.Upstream.RateLimit > 0 && c.Upstream.Burst < 1 {
		return fmt.Errorf("config: upstream.burst must be >= 1 when rate_limit is set")
	}
	if c.Upstream.BreakerFailureRatio <= 0 || c.Upstream.BreakerFailureRatio > 1 {
		return fmt.Errorf("config: upstream.breaker_failure_ratio %v is out of range (0, 1]", c.Upstream.BreakerFailureRatio)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	if c.Kafka.MaxRetries < 0 {
		return fmt.Errorf("config: kafka.max_retries must be >= 0, got %d", c.Kafka.MaxRetries)
	}
	switch c.Kafka.StartOffset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("config: kafka.start_offset %q is invalid; expected earliest|latest", c.Kafka.StartOffset)
	}

	return nil
}

//Personal.AI order the ending
