package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"grpc port", func(c *Config) {
			c.GRPC.Enabled = true
			c.GRPC.Port = -1
		}, "grpc.port"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"backend", func(c *Config) { c.Network.SourceBackend = "mysql" }, "network.source_backend"},
		{"neo4j uri", func(c *Config) { c.Neo4j.URI = "" }, "neo4j.uri"},
		{"postgres user", func(c *Config) {
			c.Network.SourceBackend = BackendPostgres
			c.Database.User = ""
		}, "database.user"},
		{"fetch limit", func(c *Config) { c.Network.FetchLimit = -1 }, "network.fetch_limit"},
		{"fetch limit below node cap", func(c *Config) { c.Network.FetchLimit = 10 }, "network.fetch_limit must be >= 50"},
		{"cache store", func(c *Config) { c.Network.CacheStore = "disk" }, "network.cache_store"},
		{"redis addr", func(c *Config) {
			c.Network.CacheStore = StoreRedis
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"cache ttl", func(c *Config) { c.Network.CacheTTL = -1 }, "network.cache_ttl"},
		{"burst", func(c *Config) { c.Upstream.Burst = 0 }, "upstream.burst"},
		{"failure ratio", func(c *Config) { c.Upstream.BreakerFailureRatio = 1.5 }, "breaker_failure_ratio"},
		{"brokers", func(c *Config) { c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"offset", func(c *Config) { c.Kafka.StartOffset = "middle" }, "kafka.start_offset"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestValidate_FetchLimitFloor(t *testing.T) {
	assert.Equal(t, domainCitation.MaxNodesPerLevel, MinFetchLimit)
	assert.GreaterOrEqual(t, DefaultFetchLimit, MinFetchLimit)

	cfg := validConfig()
	cfg.Network.FetchLimit = MinFetchLimit
	assert.NoError(t, cfg.Validate())

	cfg.Network.FetchLimit = MinFetchLimit - 1
	assert.Error(t, cfg.Validate())
}

func TestValidate_PostgresBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Network.SourceBackend = BackendPostgres
	cfg.Database.User = "citenet"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NegativeRateDisablesLimiter(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.RateLimit = -1
	cfg.Upstream.Burst = 0
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
