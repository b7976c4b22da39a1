package citation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/testutil"
)

type panickingSource struct{}

func (panickingSource) GetBackwardCitations(context.Context, string) ([]domainCitation.CitationRecord, error) {
	panic("decoder exploded")
}

func (panickingSource) GetForwardCitations(context.Context, string) ([]domainCitation.CitationRecord, error) {
	return []domainCitation.CitationRecord{{CitingPatentID: "F1", CitedPatentID: "ROOT"}}, nil
}

func newTestExpander(src domainCitation.CitationDataSource) *graphExpander {
	return newGraphExpander(src, NopRecorder(), logging.NewNopLogger())
}

func expandBoth(t *testing.T, src domainCitation.CitationDataSource, root string) *accumulator {
	t.Helper()
	e := newTestExpander(src)
	acc := newAccumulator(root)
	backward, forward := e.fetch(context.Background(), root, 1, 1)
	e.expand(acc, domainCitation.DirectionBackward, backward)
	e.expand(acc, domainCitation.DirectionForward, forward)
	return acc
}

func TestExpand_BackwardOnlyScenario(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("US10006624B2", testutil.BackwardRecords("US10006624B2", "US900000", 3))

	acc := expandBoth(t, src, "US10006624B2")

	require.Equal(t, 4, acc.registry.count())
	require.Len(t, acc.edges, 3)
	for _, e := range acc.edges {
		assert.Equal(t, "US10006624B2", e.Source)
		assert.Equal(t, 1, e.Weight)
		assert.Equal(t, "cited by examiner", e.Category)
	}
	assert.True(t, acc.stats.HasNoForwardCitations)
	assert.False(t, acc.stats.Truncated)
	assert.Equal(t, 3, acc.stats.BackwardFetched)
	assert.Equal(t, 0, acc.stats.ErrorCount)

	for _, n := range acc.registry.nodes()[1:] {
		assert.Equal(t, 1, n.Depth)
		assert.False(t, n.IsRoot)
		assert.Equal(t, BackwardNodeColor, n.Color)
		assert.Equal(t, n.ID, n.Title)
	}
}

func TestExpand_SixtyBackwardRecordsTruncateAtFifty(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 60))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 1+domainCitation.MaxNodesPerLevel, acc.registry.count())
	assert.Len(t, acc.edges, domainCitation.MaxNodesPerLevel)
	assert.True(t, acc.stats.Truncated)
	assert.Equal(t, 60, acc.stats.BackwardFetched)
}

func TestExpand_ExactlyFiftyRecordsIsNotTruncated(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 50))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 51, acc.registry.count())
	assert.False(t, acc.stats.Truncated)
}

func TestExpand_DuplicatesDoNotCountTowardsLimit(t *testing.T) {
	recs := testutil.BackwardRecords("ROOT", "B", 50)
	dupes := append([]domainCitation.CitationRecord{}, recs[:10]...)
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", append(dupes, recs...))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 51, acc.registry.count())
	assert.Len(t, acc.edges, 50, "edges are unique per (source, target)")
	assert.False(t, acc.stats.Truncated)
}

func TestExpand_BothDirectionsRespectPerLevelLimit(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 80)).
		SetForward("ROOT", testutil.ForwardRecords("ROOT", "F", 80))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 101, acc.registry.count())
	assert.LessOrEqual(t, acc.registry.count(), domainCitation.MaxTotalNodes)
	assert.True(t, acc.stats.Truncated)
	for _, e := range acc.edges {
		assert.True(t, e.Source == "ROOT" || e.Target == "ROOT")
	}
}

func TestExpand_MalformedRecordsAreSkippedAndCounted(t *testing.T) {
	recs := []domainCitation.CitationRecord{
		{CitingPatentID: "ROOT", CitedPatentID: "B1"},
		{CitingPatentID: "ROOT", CitedPatentID: "   "},
		{CitingPatentID: "ROOT", CitedPatentID: ""},
		{CitingPatentID: "ROOT", CitedPatentID: "B2"},
	}
	src := testutil.NewStaticCitationSource().SetBackward("ROOT", recs)

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 3, acc.registry.count())
	assert.Equal(t, 2, acc.stats.ErrorCount)
}

func TestExpand_SelfCitationIgnored(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", []domainCitation.CitationRecord{{CitingPatentID: "ROOT", CitedPatentID: "ROOT"}}).
		SetForward("ROOT", []domainCitation.CitationRecord{{CitingPatentID: "ROOT", CitedPatentID: "ROOT"}})

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 1, acc.registry.count())
	assert.Empty(t, acc.edges)
	assert.Equal(t, 0, acc.stats.ErrorCount)
	assert.False(t, acc.stats.HasNoForwardCitations)
}

func TestExpand_BackwardFailureKeepsForward(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		FailBackward("ROOT", errors.New("registry timeout")).
		SetForward("ROOT", testutil.ForwardRecords("ROOT", "F", 2))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 3, acc.registry.count())
	require.Len(t, acc.edges, 2)
	for _, e := range acc.edges {
		assert.Equal(t, "ROOT", e.Target)
	}
	assert.Equal(t, 1, acc.stats.ErrorCount)
	assert.False(t, acc.stats.HasNoForwardCitations)
}

func TestExpand_ForwardFailureIsNotEmptyResult(t *testing.T) {
	src := testutil.NewStaticCitationSource().FailForward("ROOT", errors.New("503"))

	acc := expandBoth(t, src, "ROOT")

	assert.False(t, acc.stats.HasNoForwardCitations)
	assert.Equal(t, 1, acc.stats.ErrorCount)
}

func TestExpand_PartialRecordsBeforeFailureAreKept(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 4)).
		FailBackward("ROOT", errors.New("stream reset"))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 5, acc.registry.count())
	assert.Equal(t, 1, acc.stats.ErrorCount)
}

func TestExpand_PanickingFetchIsIsolated(t *testing.T) {
	acc := expandBoth(t, panickingSource{}, "ROOT")

	assert.Equal(t, 2, acc.registry.count())
	assert.Equal(t, 1, acc.stats.ErrorCount)
	_, ok := acc.registry.get("F1")
	assert.True(t, ok)
}

func TestExpand_DirectionExpandedOnce(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 2))
	e := newTestExpander(src)
	acc := newAccumulator("ROOT")

	backward, _ := e.fetch(context.Background(), "ROOT", 1, 0)
	e.expand(acc, domainCitation.DirectionBackward, backward)
	e.expand(acc, domainCitation.DirectionBackward, backward)

	assert.Equal(t, 3, acc.registry.count())
	assert.Equal(t, 2, acc.stats.BackwardFetched)
}

func TestExpand_ZeroDepthSkipsFetch(t *testing.T) {
	src := testutil.NewStaticCitationSource()
	e := newTestExpander(src)

	backward, forward := e.fetch(context.Background(), "ROOT", 0, 1)

	assert.False(t, backward.requested)
	assert.True(t, forward.requested)
	assert.EqualValues(t, 0, src.BackwardCalls)
	assert.EqualValues(t, 1, src.ForwardCalls)
}

func TestExpand_TotalNodeCeiling(t *testing.T) {
	e := newTestExpander(testutil.NewStaticCitationSource())
	acc := newAccumulator("ROOT")
	for i := 1; i < domainCitation.MaxTotalNodes; i++ {
		acc.registry.add(&domainCitation.PatentNode{ID: fmt.Sprintf("X%d", i), Depth: 1})
	}

	e.expand(acc, domainCitation.DirectionForward, fetchResult{
		requested: true,
		records:   testutil.ForwardRecords("ROOT", "F", 5),
	})

	assert.Equal(t, domainCitation.MaxTotalNodes, acc.registry.count())
	assert.True(t, acc.stats.NodesLimitReached)
	assert.Empty(t, acc.edges)
}

func TestExpand_OneHopStaysBelowTotalCeiling(t *testing.T) {
	src := testutil.NewStaticCitationSource().
		SetBackward("ROOT", testutil.BackwardRecords("ROOT", "B", 80)).
		SetForward("ROOT", testutil.ForwardRecords("ROOT", "F", 80))

	acc := expandBoth(t, src, "ROOT")

	assert.Equal(t, 1+2*domainCitation.MaxNodesPerLevel, acc.registry.count())
	assert.Less(t, acc.registry.count(), domainCitation.MaxTotalNodes)
	assert.True(t, acc.stats.Truncated)
	assert.False(t, acc.stats.NodesLimitReached)
}

func TestExpand_CitationDateCarriedOntoEdge(t *testing.T) {
	d := time.Date(2018, 5, 4, 0, 0, 0, 0, time.UTC)
	src := testutil.NewStaticCitationSource().
		SetForward("ROOT", []domainCitation.CitationRecord{{CitingPatentID: "F1", CitedPatentID: "ROOT", Category: "cited by applicant", Date: &d}})

	acc := expandBoth(t, src, "ROOT")

	require.Len(t, acc.edges, 1)
	assert.Equal(t, "F1", acc.edges[0].Source)
	assert.Equal(t, d, *acc.edges[0].CitationDate)
	n, _ := acc.registry.get("F1")
	assert.Equal(t, ForwardNodeColor, n.Color)
}

//Personal.AI order the ending
