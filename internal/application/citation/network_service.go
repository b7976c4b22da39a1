// Package citation builds bounded citation networks around a root patent:
// one hop of backward and forward citations, capped per direction and in
// total, with metrics, technology clusters and node sizes for rendering.
package citation

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
)

// Service is the entry point used by the HTTP, CLI and worker layers.
type Service interface {
	// FetchCitationNetwork never fails: upstream errors, malformed records and
	// internal panics all degrade to a smaller graph that always contains the
	// root.  Depths are clamped to [0, 1].
	FetchCitationNetwork(ctx context.Context, patentID string, backwardDepth, forwardDepth int) *domainCitation.CitationNetwork
}

// Option configures the service.
type Option func(*serviceImpl)

// WithResultStore replaces the default in-memory store.
func WithResultStore(store ResultStore) Option {
	return func(s *serviceImpl) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDetailSource enables the enrichment stage.
func WithDetailSource(details domainCitation.DetailSource) Option {
	return func(s *serviceImpl) { s.details = details }
}

// WithMetricsRecorder reports build telemetry to r.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorder = r
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

type serviceImpl struct {
	expander *graphExpander
	details  domainCitation.DetailSource
	store    ResultStore
	recorder MetricsRecorder
	flight   singleflight.Group
	logger   logging.Logger
	now      func() time.Time
}

// NewService creates the citation network service.
func NewService(source domainCitation.CitationDataSource, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		store:    NewMemoryStore(),
		recorder: NopRecorder(),
		logger:   logger.Named("citation"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.expander = newGraphExpander(source, s.recorder, s.logger.Named("expander"))
	return s
}

func (s *serviceImpl) FetchCitationNetwork(ctx context.Context, patentID string, backwardDepth, forwardDepth int) *domainCitation.CitationNetwork {
	backwardDepth = domainCitation.ClampDepth(backwardDepth)
	forwardDepth = domainCitation.ClampDepth(forwardDepth)
	key := CacheKey(patentID, backwardDepth, forwardDepth)

	if cached, ok := s.lookup(ctx, key); ok {
		s.recorder.CacheHit()
		return cached.Clone()
	}
	s.recorder.CacheMiss()

	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		if cached, ok := s.lookup(ctx, key); ok {
			return cached, nil
		}
		// one caller's cancellation must not truncate the shared build
		network, ok := s.buildSafely(context.WithoutCancel(ctx), patentID, backwardDepth, forwardDepth)
		if ok {
			s.save(ctx, key, network)
		}
		return network, nil
	})
	return v.(*domainCitation.CitationNetwork).Clone()
}

func (s *serviceImpl) lookup(ctx context.Context, key string) (network *domainCitation.CitationNetwork, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("result store get panicked", logging.String("key", key), logging.Any("panic", r))
			network, ok = nil, false
		}
	}()
	network, ok = s.store.Get(ctx, key)
	return network, ok && network != nil
}

func (s *serviceImpl) save(ctx context.Context, key string, network *domainCitation.CitationNetwork) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("result store set panicked", logging.String("key", key), logging.Any("panic", r))
		}
	}()
	s.store.Set(ctx, key, network)
}

// buildSafely reports ok=false when the build panicked and a root-only
// fallback was returned instead; fallbacks are not cached.
func (s *serviceImpl) buildSafely(ctx context.Context, patentID string, backwardDepth, forwardDepth int) (network *domainCitation.CitationNetwork, ok bool) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("citation network build panicked", logging.PatentID(patentID), logging.Any("panic", r))
			network = assembleNetwork(newAccumulator(patentID), backwardDepth, forwardDepth, s.now())
			ok = false
			s.recorder.BuildCompleted(OutcomeRecovered, s.now().Sub(start), len(network.Nodes), len(network.Edges))
		}
	}()

	network, stats := s.build(ctx, patentID, backwardDepth, forwardDepth)

	outcome := OutcomeComplete
	if stats.ErrorCount > 0 {
		outcome = OutcomePartial
	}
	elapsed := s.now().Sub(start)
	s.recorder.BuildCompleted(outcome, elapsed, len(network.Nodes), len(network.Edges))
	s.logger.Info("citation network built",
		logging.PatentID(patentID),
		logging.Int("backward_depth", backwardDepth),
		logging.Int("forward_depth", forwardDepth),
		logging.Int("nodes", len(network.Nodes)),
		logging.Int("edges", len(network.Edges)),
		logging.Int("backward_fetched", stats.BackwardFetched),
		logging.Int("forward_fetched", stats.ForwardFetched),
		logging.Int("errors", stats.ErrorCount),
		logging.Bool("truncated", stats.Truncated),
		logging.Bool("nodes_limit_reached", stats.NodesLimitReached),
		logging.Duration("elapsed", elapsed),
	)
	return network, true
}

// build runs fetch, expansion (backward then forward), enrichment and the
// derivation stages over a single accumulator.
func (s *serviceImpl) build(ctx context.Context, patentID string, backwardDepth, forwardDepth int) (*domainCitation.CitationNetwork, NetworkStats) {
	acc := newAccumulator(patentID)

	// the root keeps the id exactly as requested; transports trim input
	if strings.TrimSpace(patentID) == "" {
		s.logger.Warn("empty patent id, returning root-only network")
	} else {
		backward, forward := s.expander.fetch(ctx, patentID, backwardDepth, forwardDepth)
		s.expander.expand(acc, domainCitation.DirectionBackward, backward)
		s.expander.expand(acc, domainCitation.DirectionForward, forward)
		enrich(ctx, s.details, acc, s.logger)
	}

	return assembleNetwork(acc, backwardDepth, forwardDepth, s.now()), acc.stats
}

func assembleNetwork(acc *accumulator, backwardDepth, forwardDepth int, at time.Time) *domainCitation.CitationNetwork {
	nodes := acc.registry.nodes()
	metrics := calculateMetrics(nodes, acc.edges)
	clusters := assignClusters(nodes)
	scaleSizes(nodes)

	return &domainCitation.CitationNetwork{
		PatentID:              acc.rootID,
		BackwardDepth:         backwardDepth,
		ForwardDepth:          forwardDepth,
		Nodes:                 nodes,
		Edges:                 acc.edges,
		Metrics:               metrics,
		Clusters:              clusters,
		HasNoForwardCitations: acc.stats.HasNoForwardCitations,
		Truncated:             acc.stats.Truncated || acc.stats.NodesLimitReached,
		GeneratedAt:           at.UTC(),
	}
}

//Personal.AI order the ending
