package citation

import (
	"strings"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

// calculateMetrics derives per-node citation counts (written back onto the
// nodes) and the network-level summary.
func calculateMetrics(nodes []*domainCitation.PatentNode, edges []*domainCitation.CitationEdge) *domainCitation.NetworkMetrics {
	forward := make(map[string]int, len(nodes))
	backward := make(map[string]int, len(nodes))
	byYear := make(map[int]int)
	for _, e := range edges {
		forward[e.Target]++
		backward[e.Source]++
		if e.CitationDate != nil {
			byYear[e.CitationDate.Year()]++
		}
	}

	m := &domainCitation.NetworkMetrics{
		TotalNodes:           len(nodes),
		TotalEdges:           len(edges),
		AssigneeDistribution: make(map[string]int),
		CitationsByYear:      byYear,
	}

	if n := len(nodes); n > 1 {
		m.CitationDensity = float64(len(edges)) / float64(n*(n-1))
	}

	var cited, citedSum int
	for _, node := range nodes {
		node.ForwardCitationCount = forward[node.ID]
		node.BackwardCitationCount = backward[node.ID]

		if node.ForwardCitationCount > 0 {
			cited++
			citedSum += node.ForwardCitationCount
		}
		// strictly greater keeps the first node on ties
		if node.ForwardCitationCount > m.MostCitedCount {
			m.MostCitedPatent = node.ID
			m.MostCitedCount = node.ForwardCitationCount
		}
		if a := strings.TrimSpace(node.Assignee); a != "" {
			m.AssigneeDistribution[a]++
		}
	}
	if cited > 0 {
		m.AverageCitationsPerPatent = float64(citedSum) / float64(cited)
	}
	return m
}

//Personal.AI order the ending
