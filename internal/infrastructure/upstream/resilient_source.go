// Package upstream guards calls into the citation backend with a token-bucket
// rate limiter, a per-call timeout and a circuit breaker.
package upstream

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/turtacn/keyip-citation-network/internal/config"
	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	appErrors "github.com/turtacn/keyip-citation-network/pkg/errors"
)

// StateObserver is told about every breaker transition.
type StateObserver func(name string, from, to gobreaker.State)

// Option configures a ResilientSource.
type Option func(*ResilientSource)

// WithStateObserver registers a breaker transition callback.
func WithStateObserver(fn StateObserver) Option {
	return func(s *ResilientSource) { s.observers = append(s.observers, fn) }
}

// WithName names the breaker, default "citation-source".
func WithName(name string) Option {
	return func(s *ResilientSource) { s.name = name }
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ResilientSource decorates a CitationDataSource.  It also forwards detail
// lookups when the wrapped source implements DetailSource, through the same
// limiter and breaker.
type ResilientSource struct {
	next      domainCitation.CitationDataSource
	details   domainCitation.DetailSource
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	timeout   time.Duration
	name      string
	observers []StateObserver
	logger    logging.Logger
}

// NewResilientSource wraps next.  A negative rate limit disables limiting; a
// zero timeout leaves deadlines to the caller.
func NewResilientSource(next domainCitation.CitationDataSource, cfg config.UpstreamConfig, log logging.Logger, opts ...Option) *ResilientSource {
	s := &ResilientSource{
		next:    next,
		timeout: cfg.Timeout,
		name:    "citation-source",
		logger:  log.Named("upstream"),
	}
	if d, ok := next.(domainCitation.DetailSource); ok {
		s.details = d
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	minRequests := cfg.BreakerMinRequests
	ratio := cfg.BreakerFailureRatio
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests || ratio <= 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a backend failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: s.onStateChange,
	})
	return s
}

func (s *ResilientSource) onStateChange(name string, from, to gobreaker.State) {
	s.logger.Warn("circuit breaker state changed",
		logging.String("breaker", name),
		logging.String("from", from.String()),
		logging.String("to", to.String()),
	)
	for _, fn := range s.observers {
		fn(name, from, to)
	}
}

// State reports the breaker state.
func (s *ResilientSource) State() gobreaker.State {
	return s.breaker.State()
}

func (s *ResilientSource) GetBackwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, "backward", patentID, s.next.GetBackwardCitations)
}

func (s *ResilientSource) GetForwardCitations(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error) {
	return s.citations(ctx, "forward", patentID, s.next.GetForwardCitations)
}

type fetchFunc func(ctx context.Context, patentID string) ([]domainCitation.CitationRecord, error)

func (s *ResilientSource) citations(ctx context.Context, direction, patentID string, fetch fetchFunc) ([]domainCitation.CitationRecord, error) {
	out, err := s.guard(ctx, direction, func(ctx context.Context) (any, error) {
		return fetch(ctx, patentID)
	})
	records, _ := out.([]domainCitation.CitationRecord)
	return records, err
}

// GetPatentDetails forwards to the wrapped DetailSource.
func (s *ResilientSource) GetPatentDetails(ctx context.Context, ids []string) (map[string]domainCitation.PatentDetail, error) {
	if s.details == nil {
		return nil, appErrors.New(appErrors.ErrCodeEnrichmentFailed, "citation source has no patent details")
	}
	out, err := s.guard(ctx, "details", func(ctx context.Context) (any, error) {
		return s.details.GetPatentDetails(ctx, ids)
	})
	details, _ := out.(map[string]domainCitation.PatentDetail)
	return details, err
}

// HealthCheck delegates to the wrapped source when it can check itself.  An
// open breaker makes the source not ready.
func (s *ResilientSource) HealthCheck(ctx context.Context) error {
	if s.breaker.State() == gobreaker.StateOpen {
		return appErrors.Unavailable("circuit breaker open").WithDetail(s.name)
	}
	if hc, ok := s.next.(healthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// guard applies limiter, timeout and breaker around call.  Whatever call
// returned is passed back even when it also failed.
func (s *ResilientSource) guard(ctx context.Context, op string, call func(ctx context.Context) (any, error)) (any, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDataSourceUnavailable, "rate limiter rejected request").WithDetail(op)
		}
	}

	out, err := s.breaker.Execute(func() (any, error) {
		callCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		return call(callCtx)
	})
	if err == nil {
		return out, nil
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDataSourceUnavailable, "citation source unavailable").WithDetail(op)
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return out, appErrors.Wrap(err, appErrors.ErrCodeTimeout, "citation source timed out").WithDetail(op)
	}
	return out, err
}

//Personal.AI order the ending
