// Package citation holds the public JSON shapes of the citation network API.
// They mirror what the server writes and carry no behaviour beyond lookups.
package citation

import "time"

// Node is one patent of a network.
type Node struct {
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

// Edge points from the citing patent (Source) to the cited one (Target).
type Edge struct {
	Source       string     `json:"source"`
	Target       string     `json:"target"`
	Category     string     `json:"category,omitempty"`
	CitationDate *time.Time `json:"citation_date,omitempty"`
	Weight       int        `json:"weight"`
}

// Metrics summarises a network.
type Metrics struct {
	TotalNodes                int            `json:"total_nodes"`
	TotalEdges                int            `json:"total_edges"`
	CitationDensity           float64        `json:"citation_density"`
	AverageCitationsPerPatent float64        `json:"average_citations_per_patent"`
	MostCitedPatent           string         `json:"most_cited_patent,omitempty"`
	MostCitedCount            int            `json:"most_cited_count"`
	AssigneeDistribution      map[string]int `json:"assignee_distribution"`
	CitationsByYear           map[int]int    `json:"citations_by_year"`
}

// Cluster groups patents sharing a classification prefix.
type Cluster struct {
	ClusterID   string   `json:"cluster_id"`
	ClusterName string   `json:"cluster_name"`
	PatentIDs   []string `json:"patent_ids"`
	Size        int      `json:"size"`
	Color       string   `json:"color"`
}

// Network is the body of GET /api/v1/patents/{id}/citation-network.
type Network struct {
	PatentID              string              `json:"patent_id"`
	BackwardDepth         int                 `json:"backward_depth"`
	ForwardDepth          int                 `json:"forward_depth"`
	Nodes                 []*Node             `json:"nodes"`
	Edges                 []*Edge             `json:"edges"`
	Metrics               *Metrics            `json:"metrics"`
	Clusters              map[string]*Cluster `json:"clusters"`
	HasNoForwardCitations bool                `json:"has_no_forward_citations"`
	Truncated             bool                `json:"truncated"`
	GeneratedAt           time.Time           `json:"generated_at"`
}

// Root returns the root node, or nil.
func (n *Network) Root() *Node {
	for _, node := range n.Nodes {
		if node.IsRoot {
			return node
		}
	}
	return nil
}

// Node returns the node with id, or nil.
func (n *Network) Node(id string) *Node {
	for _, node := range n.Nodes {
		if node.ID == id {
			return node
		}
	}
	return nil
}

// Cited lists the patents the root cites, in edge order.
func (n *Network) Cited() []string {
	return n.neighbours(func(e *Edge) (string, bool) { return e.Target, e.Source == n.PatentID })
}

// Citing lists the patents citing the root, in edge order.
func (n *Network) Citing() []string {
	return n.neighbours(func(e *Edge) (string, bool) { return e.Source, e.Target == n.PatentID })
}

func (n *Network) neighbours(pick func(*Edge) (string, bool)) []string {
	var out []string
	for _, e := range n.Edges {
		if id, ok := pick(e); ok {
			out = append(out, id)
		}
	}
	return out
}

//Personal.AI order the ending
