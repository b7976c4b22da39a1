package redis

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

// DefaultKeyPrefix namespaces stored networks.
const DefaultKeyPrefix = "citenet:network:"

// StoreOption configures a NetworkStore.
type StoreOption func(*NetworkStore)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *NetworkStore) { s.prefix = prefix }
}

// WithTTL sets the expiry of stored networks.  Zero keeps entries until evicted
// by Redis itself.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *NetworkStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// NetworkStore keeps JSON-encoded citation networks in Redis.  Every Redis or
// decoding failure is logged and reported as a miss; a cache outage never
// fails a network request.
type NetworkStore struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration

	failures atomic.Int64
}

// NewNetworkStore builds a store over client.
func NewNetworkStore(client *Client, log logging.Logger, opts ...StoreOption) *NetworkStore {
	s := &NetworkStore{
		client: client,
		logger: log.Named("redis_store"),
		prefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads the network stored under key.
func (s *NetworkStore) Get(ctx context.Context, key string) (*domainCitation.CitationNetwork, bool) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.fail("redis get failed", key, err)
		}
		return nil, false
	}
	var network domainCitation.CitationNetwork
	if err := json.Unmarshal(raw, &network); err != nil {
		s.fail("stored network is not decodable", key, err)
		return nil, false
	}
	return &network, true
}

// Set stores network under key.
func (s *NetworkStore) Set(ctx context.Context, key string, network *domainCitation.CitationNetwork) {
	if network == nil {
		return
	}
	raw, err := json.Marshal(network)
	if err != nil {
		s.fail("network encoding failed", key, err)
		return
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		s.fail("redis set failed", key, err)
	}
}

// Delete removes the network stored under key.
func (s *NetworkStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Failures reports how many operations degraded because of Redis or codec errors.
func (s *NetworkStore) Failures() int64 {
	return s.failures.Load()
}

// Ping checks the backing Redis for readiness checks.
func (s *NetworkStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *NetworkStore) fail(msg, key string, err error) {
	s.failures.Add(1)
	s.logger.Warn(msg, logging.String("key", key), logging.Err(err))
}

//Personal.AI order the ending
