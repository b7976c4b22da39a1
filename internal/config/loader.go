package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "CITENET"

// knownKeys are registered with viper so CITENET_* variables reach Unmarshal
// even when no config file mentions the key.
var knownKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
	"server.allowed_origins",
	"grpc.enabled", "grpc.host", "grpc.port", "grpc.debug", "grpc.max_message_size", "grpc.graceful_timeout",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	"network.source_backend", "network.enable_enrichment", "network.fetch_limit",
	"network.cache_store", "network.cache_capacity", "network.cache_ttl",
	"upstream.rate_limit", "upstream.burst", "upstream.timeout", "upstream.breaker_max_requests",
	"upstream.breaker_interval", "upstream.breaker_timeout", "upstream.breaker_min_requests",
	"upstream.breaker_failure_ratio",
	"database.host", "database.port", "database.user", "database.password", "database.db_name",
	"database.ssl_mode", "database.max_conns", "database.min_conns", "database.conn_max_lifetime",
	"database.conn_max_idle_time", "database.migration_path", "database.auto_migrate",
	"neo4j.uri", "neo4j.user", "neo4j.password", "neo4j.database", "neo4j.max_connection_pool_size",
	"neo4j.connection_timeout",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.topic", "kafka.min_bytes", "kafka.max_bytes",
	"kafka.max_wait", "kafka.start_offset", "kafka.commit_interval", "kafka.max_retries",
	"kafka.retry_backoff", "kafka.dead_letter_topic", "kafka.auto_create_topic",
	"metrics.enabled", "metrics.namespace", "metrics.subsystem", "metrics.path",
}

// newViper builds a Viper with YAML, the CITENET_ prefix and "." -> "_" key
// mapping, so "redis.addr" resolves to CITENET_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range knownKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, overlays CITENET_* variables,
// applies defaults and validates.  An empty configPath behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CITENET_* variables only.
//
//	CITENET_<SECTION>_<FIELD>   e.g.  CITENET_NEO4J_URI, CITENET_NETWORK_CACHE_STORE
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// Watch re-parses configPath on every change and passes valid results to
// onChange; invalid edits are reported to onError (if non-nil) and skipped.
// Only hot-reloadable settings such as log.level should be applied by callers.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics; for main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
