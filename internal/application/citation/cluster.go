package citation

import (
	"strings"

	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
)

const clusterPrefixLen = 4

// clusterPalette is indexed by cluster insertion order.
var clusterPalette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEAA7",
	"#DDA0DD",
}

// classificationPrefix returns the section+class+subclass part of an IPC/CPC
// code, e.g. "G06F" for "G06F 16/00".  Shorter codes are returned whole.
func classificationPrefix(code string) string {
	code = strings.TrimSpace(code)
	runes := []rune(code)
	if len(runes) <= clusterPrefixLen {
		return code
	}
	return strings.TrimSpace(string(runes[:clusterPrefixLen]))
}

// assignClusters groups classified nodes by the prefix of their first code.
func assignClusters(nodes []*domainCitation.PatentNode) map[string]*domainCitation.TechnologyCluster {
	clusters := make(map[string]*domainCitation.TechnologyCluster)
	for _, node := range nodes {
		if len(node.ClassificationCodes) == 0 {
			continue
		}
		prefix := classificationPrefix(node.ClassificationCodes[0])
		if prefix == "" {
			continue
		}
		c, ok := clusters[prefix]
		if !ok {
			c = &domainCitation.TechnologyCluster{
				ClusterID:   prefix,
				ClusterName: "IPC " + prefix,
				PatentIDs:   []string{},
				Color:       clusterPalette[len(clusters)%len(clusterPalette)],
			}
			clusters[prefix] = c
		}
		c.PatentIDs = append(c.PatentIDs, node.ID)
		c.Size++
	}
	return clusters
}

//Personal.AI order the ending
