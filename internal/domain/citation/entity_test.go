package citation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNetwork() *CitationNetwork {
	d := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	return &CitationNetwork{
		PatentID: "US1",
		Nodes: []*PatentNode{
			{ID: "US1", IsRoot: true, Size: 35},
			{ID: "US2", Depth: 1, ClassificationCodes: []string{"G06F 16/00"}},
		},
		Edges:   []*CitationEdge{{Source: "US1", Target: "US2", CitationDate: &d, Weight: 1}},
		Metrics: &NetworkMetrics{AssigneeDistribution: map[string]int{"Acme": 1}, CitationsByYear: map[int]int{2019: 1}},
		Clusters: map[string]*TechnologyCluster{
			"G06F": {ClusterID: "G06F", PatentIDs: []string{"US2"}, Size: 1},
		},
	}
}

func TestClampDepth(t *testing.T) {
	cases := map[int]int{-3: 0, 0: 0, 1: 1, 2: 1, 99: 1}
	for in, want := range cases {
		assert.Equal(t, want, ClampDepth(in), "depth %d", in)
	}
}

func TestCitationNetwork_RootAndNode(t *testing.T) {
	n := sampleNetwork()
	require.NotNil(t, n.Root())
	assert.Equal(t, "US1", n.Root().ID)
	assert.Equal(t, 1, n.Node("US2").Depth)
	assert.Nil(t, n.Node("missing"))
	assert.Nil(t, (&CitationNetwork{}).Root())
}

func TestCitationNetwork_CloneIsDeep(t *testing.T) {
	orig := sampleNetwork()
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Nodes[1].ClassificationCodes[0] = "H04L"
	cp.Nodes[1].Size = 99
	*cp.Edges[0].CitationDate = time.Time{}
	cp.Metrics.AssigneeDistribution["Other"] = 2
	cp.Metrics.CitationsByYear[2019] = 5
	cp.Clusters["G06F"].PatentIDs[0] = "X"

	assert.Equal(t, "G06F 16/00", orig.Nodes[1].ClassificationCodes[0])
	assert.Equal(t, 0, orig.Nodes[1].Size)
	assert.Equal(t, 2019, orig.Edges[0].CitationDate.Year())
	assert.NotContains(t, orig.Metrics.AssigneeDistribution, "Other")
	assert.Equal(t, 1, orig.Metrics.CitationsByYear[2019])
	assert.Equal(t, "US2", orig.Clusters["G06F"].PatentIDs[0])
}

func TestCitationNetwork_CloneNil(t *testing.T) {
	var n *CitationNetwork
	assert.Nil(t, n.Clone())
}

func TestPatentNode_TotalCitations(t *testing.T) {
	n := &PatentNode{ForwardCitationCount: 2, BackwardCitationCount: 3}
	assert.Equal(t, 5, n.TotalCitations())
}

//Personal.AI order the ending
