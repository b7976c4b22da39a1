package citation

import (
	"time"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

// Node color tags by role.
const (
	RootNodeColor     = "#E74C3C"
	BackwardNodeColor = "#3498DB"
	ForwardNodeColor  = "#2ECC71"
)

// nodeRegistry keeps nodes unique by id in first-seen order.
type nodeRegistry struct {
	order []*domainCitation.PatentNode
	byID  map[string]*domainCitation.PatentNode
}

func newNodeRegistry() *nodeRegistry {
	return &nodeRegistry{byID: make(map[string]*domainCitation.PatentNode)}
}

// add registers node unless its id is already present.
func (r *nodeRegistry) add(node *domainCitation.PatentNode) bool {
	if _, ok := r.byID[node.ID]; ok {
		return false
	}
	r.byID[node.ID] = node
	r.order = append(r.order, node)
	return true
}

func (r *nodeRegistry) get(id string) (*domainCitation.PatentNode, bool) {
	n, ok := r.byID[id]
	return n, ok
}

func (r *nodeRegistry) count() int { return len(r.order) }

func (r *nodeRegistry) nodes() []*domainCitation.PatentNode { return r.order }

func (r *nodeRegistry) ids() []string {
	ids := make([]string, len(r.order))
	for i, n := range r.order {
		ids[i] = n.ID
	}
	return ids
}

// NetworkStats records what happened while one network was built.
type NetworkStats struct {
	BackwardFetched       int
	ForwardFetched        int
	ErrorCount            int
	Truncated             bool
	NodesLimitReached     bool
	HasNoForwardCitations bool
}

type edgeKey struct {
	source string
	target string
}

// accumulator is the mutable state threaded through one build.
type accumulator struct {
	rootID   string
	registry *nodeRegistry
	edges    []*domainCitation.CitationEdge
	edgeSeen map[edgeKey]struct{}
	expanded map[domainCitation.Direction]bool
	stats    NetworkStats
}

func newAccumulator(rootID string) *accumulator {
	acc := &accumulator{
		rootID:   rootID,
		registry: newNodeRegistry(),
		edges:    make([]*domainCitation.CitationEdge, 0),
		edgeSeen: make(map[edgeKey]struct{}),
		expanded: make(map[domainCitation.Direction]bool, 2),
	}
	acc.registry.add(&domainCitation.PatentNode{
		ID:                  rootID,
		Title:               rootID,
		Depth:               0,
		IsRoot:              true,
		Color:               RootNodeColor,
		ClassificationCodes: []string{},
	})
	return acc
}

// addEdge records source->target once; repeats are ignored.
func (a *accumulator) addEdge(source, target, category string, date *time.Time) bool {
	key := edgeKey{source: source, target: target}
	if _, ok := a.edgeSeen[key]; ok {
		return false
	}
	a.edgeSeen[key] = struct{}{}
	a.edges = append(a.edges, &domainCitation.CitationEdge{
		Source:       source,
		Target:       target,
		Category:     category,
		CitationDate: date,
		Weight:       1,
	})
	return true
}

//Personal.AI order the ending
