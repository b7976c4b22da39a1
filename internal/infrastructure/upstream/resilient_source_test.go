package upstream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-citation-network/internal/config"
	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/testutil"
	appErrors "github.com/turtacn/keyip-citation-network/pkg/errors"
)

func testConfig() config.UpstreamConfig {
	return config.UpstreamConfig{
		RateLimit:           -1,
		Timeout:             time.Second,
		BreakerMaxRequests:  1,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      time.Minute,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
	}
}

func TestResilientSource_PassesThrough(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("US1", testutil.BackwardRecords("US1", "B", 3)).
		SetForward("US1", testutil.ForwardRecords("US1", "F", 2))
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger())

	backward, err := rs.GetBackwardCitations(context.Background(), "US1")
	require.NoError(t, err)
	assert.Len(t, backward, 3)

	forward, err := rs.GetForwardCitations(context.Background(), "US1")
	require.NoError(t, err)
	assert.Len(t, forward, 2)
	assert.Equal(t, gobreaker.StateClosed, rs.State())
}

func TestResilientSource_KeepsPartialRecordsOnError(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("US1", testutil.BackwardRecords("US1", "B", 2)).
		FailBackward("US1", errors.New("stream reset"))
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger())

	records, err := rs.GetBackwardCitations(context.Background(), "US1")

	assert.EqualError(t, err, "stream reset")
	assert.Len(t, records, 2)
}

func TestResilientSource_BreakerOpens(t *testing.T) {
	src := testutil.NewStaticCitationSource().FailForward("US1", errors.New("503"))
	var mu sync.Mutex
	var transitions []gobreaker.State
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger(),
		WithName("test"),
		WithStateObserver(func(name string, _, to gobreaker.State) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "test", name)
			transitions = append(transitions, to)
		}))

	for i := 0; i < 2; i++ {
		_, err := rs.GetForwardCitations(context.Background(), "US1")
		require.Error(t, err)
	}
	require.Equal(t, gobreaker.StateOpen, rs.State())

	_, err := rs.GetForwardCitations(context.Background(), "US1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDataSourceUnavailable))
	assert.Equal(t, int64(2), src.ForwardCalls)

	mu.Lock()
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
	mu.Unlock()

	assert.True(t, appErrors.IsCode(rs.HealthCheck(context.Background()), appErrors.ErrCodeDataSourceUnavailable))
}

func TestResilientSource_BelowMinRequestsStaysClosed(t *testing.T) {
	src := testutil.NewStaticCitationSource().FailBackward("US1", errors.New("boom"))
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger())

	_, _ = rs.GetBackwardCitations(context.Background(), "US1")
	assert.Equal(t, gobreaker.StateClosed, rs.State())
}

func TestResilientSource_Timeout(t *testing.T) {
	src := testutil.NewStaticCitationSource().WithDelay(200 * time.Millisecond)
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond
	rs := NewResilientSource(src, cfg, logging.NewNopLogger())

	_, err := rs.GetBackwardCitations(context.Background(), "US1")

	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeTimeout))
}

func TestResilientSource_CallerCancelDoesNotTrip(t *testing.T) {
	src := testutil.NewStaticCitationSource().WithDelay(time.Second)
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger())

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := rs.GetBackwardCitations(ctx, "US1")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, rs.State())
}

func TestResilientSource_RateLimiterHonoursContext(t *testing.T) {
	src := testutil.NewStaticCitationSource()
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 1
	rs := NewResilientSource(src, cfg, logging.NewNopLogger())

	_, err := rs.GetBackwardCitations(context.Background(), "US1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = rs.GetBackwardCitations(ctx, "US1")
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDataSourceUnavailable))
	assert.Equal(t, int64(1), src.BackwardCalls)
}

func TestResilientSource_Details(t *testing.T) {
	src := testutil.NewStaticCitationSource().SetDetail(domainCitation.PatentDetail{PatentID: "US1", Assignee: "Acme"})
	rs := NewResilientSource(src, testConfig(), logging.NewNopLogger())

	details, err := rs.GetPatentDetails(context.Background(), []string{"US1", "US2"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", details["US1"].Assignee)
	assert.Len(t, details, 1)
}

type recordsOnly struct{}

func (recordsOnly) GetBackwardCitations(context.Context, string) ([]domainCitation.CitationRecord, error) {
	return nil, nil
}
func (recordsOnly) GetForwardCitations(context.Context, string) ([]domainCitation.CitationRecord, error) {
	return nil, nil
}

func TestResilientSource_DetailsUnsupported(t *testing.T) {
	rs := NewResilientSource(recordsOnly{}, testConfig(), logging.NewNopLogger())

	_, err := rs.GetPatentDetails(context.Background(), []string{"US1"})
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeEnrichmentFailed))
	assert.NoError(t, rs.HealthCheck(context.Background()))
}

//Personal.AI order the ending
