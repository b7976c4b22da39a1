package citation

import (
	"time"
)

// Expansion ceilings.  Depth beyond MaxDepth is never honored.
const (
	MaxDepth         = 1
	MaxNodesPerLevel = 50
	MaxTotalNodes    = 200
)

// Direction identifies one side of the citation graph around the root.
type Direction string

const (
	// DirectionBackward covers patents the root cites (edge root -> cited).
	DirectionBackward Direction = "backward"
	// DirectionForward covers patents citing the root (edge citing -> root).
	DirectionForward Direction = "forward"
)

// PatentNode is one patent in a citation network.
type PatentNode struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	Depth                 int      `json:"depth"`
	IsRoot                bool     `json:"is_root"`
	BackwardCitationCount int      `json:"backward_citation_count"`
	ForwardCitationCount  int      `json:"forward_citation_count"`
	Size                  int      `json:"size"`
	Color                 string   `json:"color"`
	ClassificationCodes   []string `json:"classification_codes"`
	Assignee              string   `json:"assignee,omitempty"`
}

// TotalCitations is forward plus backward count.
func (n *PatentNode) TotalCitations() int {
	return n.ForwardCitationCount + n.BackwardCitationCount
}

// CitationEdge links a citing patent (Source) to a cited patent (Target).
type CitationEdge struct {
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	Category     string     `json:"category,omitempty"`
	CitationDate *time.Time `json:"citation_date,omitempty"`
	Weight       int        `json:"weight"`
}

// NetworkMetrics summarises a finished network.
type NetworkMetrics struct {
	TotalNodes                int            `json:"total_nodes"`
	TotalEdges                int            `json:"total_edges"`
	CitationDensity           float64        `json:"citation_density"`
	AverageCitationsPerPatent float64        `json:"average_citations_per_patent"`
	MostCitedPatent           string         `json:"most_cited_patent,omitempty"`
	MostCitedCount            int            `json:"most_cited_count"`
	AssigneeDistribution      map[string]int `json:"assignee_distribution"`
	CitationsByYear           map[int]int    `json:"citations_by_year"`
}

// TechnologyCluster groups nodes sharing a classification prefix.
type TechnologyCluster struct {
	ClusterID   string   `json:"cluster_id"`
	ClusterName string   `json:"cluster_name"`
	PatentIDs   []string `json:"patent_ids"`
	Size        int      `json:"size"`
	Color       string   `json:"color"`
}

// CitationNetwork is the assembled response for one root patent.
type CitationNetwork struct {
	PatentID              string                        `json:"patent_id"`
	BackwardDepth         int                           `json:"backward_depth"`
	ForwardDepth          int                           `json:"forward_depth"`
	Nodes                 []*PatentNode                 `json:"nodes"`
	Edges                 []*CitationEdge               `json:"edges"`
	Metrics               *NetworkMetrics               `json:"metrics"`
	Clusters              map[string]*TechnologyCluster `json:"clusters"`
	HasNoForwardCitations bool                          `json:"has_no_forward_citations"`
	Truncated             bool                          `json:"truncated"`
	GeneratedAt           time.Time                     `json:"generated_at"`
}

// Root returns the depth-0 node, or nil for a malformed network.
func (n *CitationNetwork) Root() *PatentNode {
	for _, node := range n.Nodes {
		if node.IsRoot {
			return node
		}
	}
	return nil
}

// Node looks a node up by id.
func (n *CitationNetwork) Node(id string) *PatentNode {
	for _, node := range n.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// Clone returns a deep copy so cached networks never share mutable state
// with callers.
func (n *CitationNetwork) Clone() *CitationNetwork {
	if n == nil {
		return nil
	}
	out := *n

	out.Nodes = make([]*PatentNode, len(n.Nodes))
	for i, node := range n.Nodes {
		cp := *node
		cp.ClassificationCodes = cloneStrings(node.ClassificationCodes)
		out.Nodes[i] = &cp
	}

	out.Edges = make([]*CitationEdge, len(n.Edges))
	for i, edge := range n.Edges {
		cp := *edge
		if edge.CitationDate != nil {
			d := *edge.CitationDate
			cp.CitationDate = &d
		}
		out.Edges[i] = &cp
	}

	if n.Metrics != nil {
		m := *n.Metrics
		if n.Metrics.AssigneeDistribution != nil {
			m.AssigneeDistribution = make(map[string]int, len(n.Metrics.AssigneeDistribution))
			for k, v := range n.Metrics.AssigneeDistribution {
				m.AssigneeDistribution[k] = v
			}
		}
		if n.Metrics.CitationsByYear != nil {
			m.CitationsByYear = make(map[int]int, len(n.Metrics.CitationsByYear))
			for k, v := range n.Metrics.CitationsByYear {
				m.CitationsByYear[k] = v
			}
		}
		out.Metrics = &m
	}

	if n.Clusters == nil {
		return &out
	}
	out.Clusters = make(map[string]*TechnologyCluster, len(n.Clusters))
	for k, c := range n.Clusters {
		cp := *c
		cp.PatentIDs = cloneStrings(c.PatentIDs)
		out.Clusters[k] = &cp
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ClampDepth bounds a requested depth to [0, MaxDepth].
func ClampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}

//Personal.AI order the ending
