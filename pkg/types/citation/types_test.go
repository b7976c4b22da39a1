package citation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNetwork = `{
  "patent_id": "US1",
  "backward_depth": 1,
  "forward_depth": 1,
  "nodes": [
    {"id": "US1", "title": "US1", "depth": 0, "is_root": true, "size": 40},
    {"id": "B1", "title": "Widget", "depth": 1, "classification_codes": ["G06F16/00"]},
    {"id": "F1", "title": "F1", "depth": 1}
  ],
  "edges": [
    {"source": "US1", "target": "B1", "category": "cited by examiner", "weight": 1},
    {"source": "F1", "target": "US1", "weight": 1}
  ],
  "metrics": {"total_nodes": 3, "total_edges": 2, "citations_by_year": {"2019": 1}},
  "clusters": {"G06F": {"cluster_id": "G06F", "patent_ids": ["B1"], "size": 1}},
  "has_no_forward_citations": false,
  "truncated": false,
  "generated_at": "2024-05-01T10:00:00Z"
}`

func TestNetwork_Decode(t *testing.T) {
	var n Network
	require.NoError(t, json.Unmarshal([]byte(sampleNetwork), &n))

	assert.Equal(t, "US1", n.PatentID)
	require.NotNil(t, n.Root())
	assert.Equal(t, 40, n.Root().Size)
	assert.Equal(t, "Widget", n.Node("B1").Title)
	assert.Nil(t, n.Node("missing"))
	assert.Equal(t, 1, n.Metrics.CitationsByYear[2019])
	assert.Equal(t, []string{"B1"}, n.Clusters["G06F"].PatentIDs)
	assert.Equal(t, 2024, n.GeneratedAt.Year())
}

func TestNetwork_Neighbours(t *testing.T) {
	var n Network
	require.NoError(t, json.Unmarshal([]byte(sampleNetwork), &n))

	assert.Equal(t, []string{"B1"}, n.Cited())
	assert.Equal(t, []string{"F1"}, n.Citing())
}

func TestNetwork_RootMissing(t *testing.T) {
	n := Network{Nodes: []*Node{{ID: "B1"}}}
	assert.Nil(t, n.Root())
	assert.Empty(t, n.Cited())
}

//Personal.AI order the ending
