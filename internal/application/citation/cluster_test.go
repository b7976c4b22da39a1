package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

func TestClassificationPrefix(t *testing.T) {
	cases := map[string]string{
		"G06F 16/00": "G06F",
		"H04L29/06":  "H04L",
		"  A61K ":    "A61K",
		"B01":        "B01",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, classificationPrefix(in), "code %q", in)
	}
}

func TestAssignClusters_GroupsByFirstCodePrefix(t *testing.T) {
	nodes := []*domainCitation.PatentNode{
		{ID: "ROOT", IsRoot: true, ClassificationCodes: []string{"G06F 16/00"}},
		{ID: "B1", ClassificationCodes: []string{"H04L 9/00", "G06F 21/00"}},
		{ID: "B2", ClassificationCodes: []string{"G06F 17/30"}},
		{ID: "B3"},
		{ID: "B4", ClassificationCodes: []string{}},
	}

	clusters := assignClusters(nodes)

	require.Len(t, clusters, 2)
	g := clusters["G06F"]
	require.NotNil(t, g)
	assert.Equal(t, "IPC G06F", g.ClusterName)
	assert.Equal(t, []string{"ROOT", "B2"}, g.PatentIDs)
	assert.Equal(t, 2, g.Size)
	assert.Equal(t, clusterPalette[0], g.Color)

	h := clusters["H04L"]
	require.NotNil(t, h)
	assert.Equal(t, []string{"B1"}, h.PatentIDs)
	assert.Equal(t, clusterPalette[1], h.Color)

	for _, c := range clusters {
		assert.NotContains(t, c.PatentIDs, "B3")
		assert.NotContains(t, c.PatentIDs, "B4")
	}
}

func TestAssignClusters_PaletteCycles(t *testing.T) {
	prefixes := []string{"A01B", "B01C", "C07D", "D01F", "E04G", "F16H", "G06N"}
	nodes := make([]*domainCitation.PatentNode, len(prefixes))
	for i, p := range prefixes {
		nodes[i] = &domainCitation.PatentNode{ID: p, ClassificationCodes: []string{p + " 1/00"}}
	}

	clusters := assignClusters(nodes)

	require.Len(t, clusters, 7)
	assert.Equal(t, clusterPalette[0], clusters["G06N"].Color)
	assert.Equal(t, clusterPalette[5], clusters["F16H"].Color)
}

func TestAssignClusters_NoClassificationData(t *testing.T) {
	clusters := assignClusters([]*domainCitation.PatentNode{{ID: "ROOT", IsRoot: true}})
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

//Personal.AI order the ending
