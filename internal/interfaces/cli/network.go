package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/keyip-citation-network/internal/app"
	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/client"
	"github.com/turtacn/keyip-citation-network/pkg/types/citation"
)

func newNetworkCmd() *cobra.Command {
	var (
		backwardDepth, forwardDepth int
		server, apiKey              string
	)

	cmd := &cobra.Command{
		Use:   "network <patent-id>",
		Short: "Build the citation network of a patent",
		Long: "Build the citation network around a patent: the patents it cites\n" +
			"(backward) and the patents citing it (forward).  Depths above 1 are\n" +
			"clamped to 1; a depth of 0 skips that direction.",
		Example: "  citenet network US10006624B2\n" +
			"  citenet network US10006624B2 --forward-depth 0 -o json\n" +
			"  citenet network US10006624B2 --server http://citenet.internal:8080",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.withTimeout(cmd.Context())
			defer cancel()

			patentID := strings.TrimSpace(args[0])
			var network *citation.Network
			if server != "" {
				network, err = fetchRemote(ctx, cliCtx, server, apiKey, patentID, backwardDepth, forwardDepth)
			} else {
				network, err = fetchLocal(ctx, cliCtx, patentID, backwardDepth, forwardDepth)
			}
			if err != nil {
				return err
			}
			cliCtx.Logger.Debug("citation network built",
				logging.PatentID(patentID),
				logging.Int("nodes", len(network.Nodes)),
				logging.Int("edges", len(network.Edges)),
			)

			return PrintResult(cmd, network, func(cmd *cobra.Command) error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), FormatNetwork(network))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&backwardDepth, "backward-depth", 1, "levels of cited patents to include (0 or 1)")
	cmd.Flags().IntVar(&forwardDepth, "forward-depth", 1, "levels of citing patents to include (0 or 1)")
	cmd.Flags().StringVar(&server, "server", "", "query a running API server instead of the configured backend")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer token sent to --server")
	return cmd
}

func fetchLocal(ctx context.Context, cliCtx *CLIContext, patentID string, backwardDepth, forwardDepth int) (*citation.Network, error) {
	container, err := app.NewContainer(ctx, cliCtx.Config, cliCtx.Logger, cliCtx.containerOptions...)
	if err != nil {
		return nil, err
	}
	defer container.Shutdown(ctx)

	return NetworkView(container.Service.FetchCitationNetwork(ctx, patentID, backwardDepth, forwardDepth)), nil
}

func fetchRemote(ctx context.Context, cliCtx *CLIContext, server, apiKey, patentID string, backwardDepth, forwardDepth int) (*citation.Network, error) {
	c, err := client.NewClient(server, apiKey,
		client.WithTimeout(cliCtx.Timeout),
		client.WithUserAgent("citenet-cli/"+Version),
	)
	if err != nil {
		return nil, err
	}
	return c.Citations().GetNetwork(ctx, client.NetworkRequest{
		PatentID:      patentID,
		BackwardDepth: backwardDepth,
		ForwardDepth:  forwardDepth,
	})
}

// NetworkView converts a built network to its wire shape.
func NetworkView(n *domainCitation.CitationNetwork) *citation.Network {
	if n == nil {
		return nil
	}
	out := &citation.Network{
		PatentID:              n.PatentID,
		BackwardDepth:         n.BackwardDepth,
		ForwardDepth:          n.ForwardDepth,
		Nodes:                 make([]*citation.Node, 0, len(n.Nodes)),
		Edges:                 make([]*citation.Edge, 0, len(n.Edges)),
		Clusters:              make(map[string]*citation.Cluster, len(n.Clusters)),
		HasNoForwardCitations: n.HasNoForwardCitations,
		Truncated:             n.Truncated,
		GeneratedAt:           n.GeneratedAt,
	}
	for _, node := range n.Nodes {
		out.Nodes = append(out.Nodes, &citation.Node{
			ID:                    node.ID,
			Title:                 node.Title,
			Depth:                 node.Depth,
			IsRoot:                node.IsRoot,
			BackwardCitationCount: node.BackwardCitationCount,
			ForwardCitationCount:  node.ForwardCitationCount,
			Size:                  node.Size,
			Color:                 node.Color,
			ClassificationCodes:   node.ClassificationCodes,
			Assignee:              node.Assignee,
		})
	}
	for _, e := range n.Edges {
		out.Edges = append(out.Edges, &citation.Edge{
			Source:       e.Source,
			Target:       e.Target,
			Category:     e.Category,
			CitationDate: e.CitationDate,
			Weight:       e.Weight,
		})
	}
	if m := n.Metrics; m != nil {
		out.Metrics = &citation.Metrics{
			TotalNodes:                m.TotalNodes,
			TotalEdges:                m.TotalEdges,
			CitationDensity:           m.CitationDensity,
			AverageCitationsPerPatent: m.AverageCitationsPerPatent,
			MostCitedPatent:           m.MostCitedPatent,
			MostCitedCount:            m.MostCitedCount,
			AssigneeDistribution:      m.AssigneeDistribution,
			CitationsByYear:           m.CitationsByYear,
		}
	}
	for id, c := range n.Clusters {
		out.Clusters[id] = &citation.Cluster{
			ClusterID:   c.ClusterID,
			ClusterName: c.ClusterName,
			PatentIDs:   c.PatentIDs,
			Size:        c.Size,
			Color:       c.Color,
		}
	}
	return out
}

// FormatNetwork renders a network summary followed by node and cluster tables.
func FormatNetwork(n *citation.Network) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Patent:         %s\n", n.PatentID)
	fmt.Fprintf(&sb, "Depth:          backward=%d forward=%d\n", n.BackwardDepth, n.ForwardDepth)
	fmt.Fprintf(&sb, "Nodes / edges:  %d / %d\n", len(n.Nodes), len(n.Edges))
	if n.Metrics != nil {
		fmt.Fprintf(&sb, "Density:        %.4f\n", n.Metrics.CitationDensity)
		if n.Metrics.MostCitedPatent != "" {
			fmt.Fprintf(&sb, "Most cited:     %s (%d)\n", n.Metrics.MostCitedPatent, n.Metrics.MostCitedCount)
		}
	}
	if n.HasNoForwardCitations {
		sb.WriteString("Forward:        no citing patents found\n")
	}
	if n.Truncated {
		sb.WriteString("Truncated:      node limit reached\n")
	}
	sb.WriteString("\n")

	rows := make([][]string, 0, len(n.Nodes))
	for _, node := range n.Nodes {
		rows = append(rows, []string{
			node.ID,
			strconv.Itoa(node.Depth),
			strconv.Itoa(node.BackwardCitationCount),
			strconv.Itoa(node.ForwardCitationCount),
			strconv.Itoa(node.Size),
			node.Title,
		})
	}
	sb.WriteString(FormatTable([]string{"ID", "DEPTH", "CITES", "CITED BY", "SIZE", "TITLE"}, rows))

	if len(n.Clusters) > 0 {
		ids := make([]string, 0, len(n.Clusters))
		for id := range n.Clusters {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		clusterRows := make([][]string, 0, len(ids))
		for _, id := range ids {
			c := n.Clusters[id]
			clusterRows = append(clusterRows, []string{c.ClusterID, strconv.Itoa(c.Size), c.Color, c.ClusterName})
		}
		sb.WriteString("\n")
		sb.WriteString(FormatTable([]string{"CLUSTER", "SIZE", "COLOR", "NAME"}, clusterRows))
	}
	return sb.String()
}

//Personal.AI order the ending
