package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/keyip-citation-network/pkg/errors"
	"github.com/turtacn/keyip-citation-network/pkg/types/citation"
)

// CitationsClient wraps /api/v1/patents/{id}/citation-network.
type CitationsClient struct {
	client *Client
}

// NetworkRequest selects the root patent and traversal depths.  Depths are
// sent as given; the server clamps them to [0, 1].
type NetworkRequest struct {
	PatentID      string
	BackwardDepth int
	ForwardDepth  int
}

// GetNetwork fetches a citation network.
func (c *CitationsClient) GetNetwork(ctx context.Context, req NetworkRequest) (*citation.Network, error) {
	id := strings.TrimSpace(req.PatentID)
	if id == "" {
		return nil, errors.New(errors.ErrCodePatentNumberInvalid, "patent id must not be blank")
	}

	query := url.Values{}
	query.Set("backward_depth", strconv.Itoa(req.BackwardDepth))
	query.Set("forward_depth", strconv.Itoa(req.ForwardDepth))

	var network citation.Network
	path := "/api/v1/patents/" + url.PathEscape(id) + "/citation-network"
	if err := c.client.get(ctx, path, query, &network); err != nil {
		return nil, err
	}
	return &network, nil
}

//Personal.AI order the ending
