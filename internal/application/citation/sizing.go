package citation

import (
	"math"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

const (
	rootNodeSize = 35
	minNodeSize  = 15
	maxNodeSize  = 40
)

// scaleSizes sets the visual size of every node from its citation volume
// relative to the busiest non-root node.
func scaleSizes(nodes []*domainCitation.PatentNode) {
	maxTotal := 1
	for _, n := range nodes {
		if !n.IsRoot && n.TotalCitations() > maxTotal {
			maxTotal = n.TotalCitations()
		}
	}

	for _, n := range nodes {
		if n.IsRoot {
			n.Size = rootNodeSize
			continue
		}
		ratio := float64(n.TotalCitations()) / float64(maxTotal)
		size := minNodeSize + int(math.Round(float64(maxNodeSize-minNodeSize)*ratio))
		if size < minNodeSize {
			size = minNodeSize
		}
		if size > maxNodeSize {
			size = maxNodeSize
		}
		n.Size = size
	}
}

//Personal.AI order the ending
