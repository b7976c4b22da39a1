package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

func TestScaleSizes(t *testing.T) {
	nodes := []*domainCitation.PatentNode{
		{ID: "ROOT", IsRoot: true, BackwardCitationCount: 100},
		{ID: "MAX", ForwardCitationCount: 3, BackwardCitationCount: 1},
		{ID: "HALF", ForwardCitationCount: 2},
		{ID: "ZERO"},
	}

	scaleSizes(nodes)

	assert.Equal(t, 35, nodes[0].Size)
	assert.Equal(t, 40, nodes[1].Size)
	assert.Equal(t, 15+13, nodes[2].Size) // round(25 * 2/4) = round(12.5)
	assert.Equal(t, 15, nodes[3].Size)
}

func TestScaleSizes_AllZeroUsesFloorOfOne(t *testing.T) {
	nodes := []*domainCitation.PatentNode{
		{ID: "ROOT", IsRoot: true},
		{ID: "A"},
		{ID: "B"},
	}

	scaleSizes(nodes)

	assert.Equal(t, 35, nodes[0].Size)
	assert.Equal(t, 15, nodes[1].Size)
	assert.Equal(t, 15, nodes[2].Size)
}

func TestScaleSizes_SingleCitationIsMax(t *testing.T) {
	nodes := []*domainCitation.PatentNode{
		{ID: "ROOT", IsRoot: true, BackwardCitationCount: 3},
		{ID: "A", ForwardCitationCount: 1},
		{ID: "B", ForwardCitationCount: 1},
	}

	scaleSizes(nodes)

	for _, n := range nodes[1:] {
		assert.Equal(t, 40, n.Size)
	}
}

//Personal.AI order the ending
